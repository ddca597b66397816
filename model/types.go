// Package model defines the shared types, sentinel errors and functional
// options of the composition layer.
package model

import (
	"errors"
	"unicode"

	"github.com/strufit/strufit/param"
	"github.com/strufit/strufit/structure"
)

// Sentinel errors for composition and evaluation.
var (
	// ErrNilProfile is returned when a Contribution is built without data.
	ErrNilProfile = errors.New("model: profile is nil")

	// ErrNilGenerator is returned when a nil Generator is registered.
	ErrNilGenerator = errors.New("model: generator is nil")

	// ErrBadName is returned when a contribution, generator or function name
	// is not a valid identifier ([A-Za-z_][A-Za-z0-9_]*).
	ErrBadName = errors.New("model: name is not a valid identifier")

	// ErrDuplicateTerm is returned when a generator, function or parameter
	// name collides with one already registered on the Contribution.
	ErrDuplicateTerm = errors.New("model: duplicate term name")

	// ErrUnresolvedSymbol is returned in strict-symbol mode when the equation
	// references a name that is neither a generator, a function, the domain
	// symbol nor an existing parameter.
	ErrUnresolvedSymbol = errors.New("model: unresolved equation symbol")

	// ErrBadArgs is returned when an envelope's argument names and defaults
	// disagree, or an argument name is invalid.
	ErrBadArgs = errors.New("model: invalid envelope arguments")

	// ErrLengthMismatch is returned when profile arrays differ in length.
	ErrLengthMismatch = errors.New("model: data array length mismatch")

	// ErrUnsortedDomain is returned when observed x values are not strictly
	// increasing.
	ErrUnsortedDomain = errors.New("model: domain must be strictly increasing")

	// ErrEmptyRange is returned when the fitting range clips to nothing.
	ErrEmptyRange = errors.New("model: fitting range contains no points")

	// ErrNoEquation is returned when a Contribution without generators is
	// evaluated before any equation is set.
	ErrNoEquation = errors.New("model: no equation and no generators to sum")
)

// Generator produces a simulated signal over a domain given its current
// parameter state.
type Generator interface {
	// Name returns the identifier the generator is referenced by in equations.
	Name() string
	// Eval computes the signal over x. The result has len(x).
	Eval(x []float64) ([]float64, error)
}

// Refinable is a Generator whose physical quantities can be mapped to fit
// parameters by the constraint reducer: its overall scale, peak-sharpening
// coefficients, and the underlying structural model.
type Refinable interface {
	Generator
	// ScaleCell returns the overall scale slot.
	ScaleCell() param.Cell
	// DeltaCell returns the sharpening coefficient slot of the given order
	// (1 or 2); ok is false when the generator has no such term.
	DeltaCell(order int) (cell param.Cell, ok bool)
	// Structure returns the structural model the signal derives from.
	Structure() structure.Model
}

// EnvelopeFunc computes a named auxiliary term over the domain from its
// scalar arguments, in the order they were declared.
type EnvelopeFunc func(x []float64, args ...float64) ([]float64, error)

// Option configures a Contribution.
type Option func(*Contribution)

// WithXName sets the name of the independent variable symbol in equations.
// Default "x".
func WithXName(name string) Option {
	return func(c *Contribution) {
		if validIdent(name) {
			c.xname = name
		}
	}
}

// WithStrictSymbols makes SetEquation fail with ErrUnresolvedSymbol on
// unknown names instead of auto-creating free parameters for them.
func WithStrictSymbols() Option {
	return func(c *Contribution) { c.strict = true }
}

// validIdent reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}
