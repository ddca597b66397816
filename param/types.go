// Package param defines the Parameter type, its sentinel errors, and the
// functional options accepted by NewRegistry.
package param

import (
	"errors"
	"math"
	"sort"
)

// Sentinel errors for registry operations.
var (
	// ErrDuplicateName is returned when adding a Parameter whose name already
	// exists in the Registry without an explicit constrain-to-existing request.
	ErrDuplicateName = errors.New("param: duplicate parameter name")

	// ErrUnknownTag is returned when Fix/Free references a tag or name absent
	// from the Registry while validation is enabled.
	ErrUnknownTag = errors.New("param: unknown tag or parameter name")

	// ErrUnknownName is returned when a by-name value update references a
	// parameter absent from the Registry.
	ErrUnknownName = errors.New("param: unknown parameter name")

	// ErrEmptyName is returned when a Parameter is created with an empty name.
	ErrEmptyName = errors.New("param: parameter name must be non-empty")

	// ErrNilParameter is returned when a nil *Parameter or nil Cell is passed
	// where a value is required.
	ErrNilParameter = errors.New("param: nil parameter or cell")

	// ErrBadBounds is returned when lower > upper or a bound is NaN.
	ErrBadBounds = errors.New("param: invalid bounds")

	// ErrLengthMismatch is returned when a positional value vector does not
	// match the current number of free parameters.
	ErrLengthMismatch = errors.New("param: value vector length mismatch")

	// ErrNotRegistered is returned when Constrain references a representative
	// that is not owned by this Registry.
	ErrNotRegistered = errors.New("param: representative not in registry")
)

// Cell is a settable scalar slot owned by a model quantity (a lattice length,
// an atom's displacement factor, an envelope argument). Constraining a Cell to
// a Parameter makes Resolve copy the Parameter's value into the Cell before
// every residual evaluation.
type Cell interface {
	Value() float64
	SetValue(float64)
}

// Parameter is a single named fit variable.
//
// Invariants:
//   - name is unique within its Registry and never changes after creation.
//   - bounds default to (-Inf, +Inf); lower <= upper always holds.
//   - a Parameter is never destroyed implicitly; removal must be explicit.
type Parameter struct {
	name  string
	value float64
	lower float64
	upper float64
	fixed bool
	tags  map[string]struct{}
}

// New creates a free Parameter with the given name and initial value,
// unbounded on both sides. Name validity is checked on Registry.Add.
func New(name string, value float64) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
		lower: math.Inf(-1),
		upper: math.Inf(1),
		tags:  make(map[string]struct{}),
	}
}

// Name returns the unique name of the parameter.
func (p *Parameter) Name() string { return p.name }

// Value returns the current value.
func (p *Parameter) Value() float64 { return p.value }

// SetValue overwrites the current value.
func (p *Parameter) SetValue(v float64) { p.value = v }

// Bounds returns the (lower, upper) box bounds.
func (p *Parameter) Bounds() (lower, upper float64) { return p.lower, p.upper }

// SetBounds sets absolute box bounds [lower, upper].
// Returns ErrBadBounds when lower > upper or either bound is NaN.
func (p *Parameter) SetBounds(lower, upper float64) error {
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return ErrBadBounds
	}
	p.lower, p.upper = lower, upper

	return nil
}

// BoundWindow sets bounds to value ± w. Returns ErrBadBounds when w < 0 or NaN.
func (p *Parameter) BoundWindow(w float64) error {
	if math.IsNaN(w) || w < 0 {
		return ErrBadBounds
	}
	p.lower, p.upper = p.value-w, p.value+w

	return nil
}

// Fixed reports whether the parameter is excluded from optimization.
func (p *Parameter) Fixed() bool { return p.fixed }

// Fix excludes the parameter from optimization.
func (p *Parameter) Fix() { p.fixed = true }

// Free includes the parameter in optimization.
func (p *Parameter) Free() { p.fixed = false }

// HasTag reports whether the parameter carries the given tag.
func (p *Parameter) HasTag(tag string) bool {
	_, ok := p.tags[tag]

	return ok
}

// Tags returns the parameter's tags in sorted order.
func (p *Parameter) Tags() []string {
	out := make([]string, 0, len(p.tags))
	for t := range p.tags {
		out = append(out, t)
	}
	sort.Strings(out)

	return out
}

// addTag records a tag membership; empty tags are ignored.
func (p *Parameter) addTag(tag string) {
	if tag == "" {
		return
	}
	p.tags[tag] = struct{}{}
}

// Option configures a Registry via functional arguments.
type Option func(*Registry)

// WithoutValidation disables unknown-tag checks in Fix/Free: selectors that
// match nothing silently no-op instead of returning ErrUnknownTag. Use only
// when schedules are generated and may legitimately reference absent groups.
func WithoutValidation() Option {
	return func(r *Registry) { r.validate = false }
}
