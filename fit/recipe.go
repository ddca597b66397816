package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/strufit/strufit/model"
	"github.com/strufit/strufit/param"
)

var (
	// ErrNilContribution is returned when AddContribution receives nil.
	ErrNilContribution = errors.New("fit: contribution is nil")

	// ErrDuplicateContribution is returned when a contribution name is
	// already registered in the recipe.
	ErrDuplicateContribution = errors.New("fit: duplicate contribution name")

	// ErrBadWeight is returned for a non-positive or non-finite weight.
	ErrBadWeight = errors.New("fit: weight must be positive and finite")

	// ErrNoContributions is returned when a residual is requested from an
	// empty recipe.
	ErrNoContributions = errors.New("fit: recipe has no contributions")
)

// term is one registered contribution with its residual weight.
type term struct {
	con    *model.Contribution
	weight float64
}

// Recipe aggregates contributions and the shared parameter registry.
// The zero value is not usable; construct with NewRecipe.
type Recipe struct {
	registry *param.Registry
	terms    []term
	names    map[string]struct{}
}

// NewRecipe creates an empty Recipe with its own registry.
// Options are forwarded to param.NewRegistry.
func NewRecipe(opts ...param.Option) *Recipe {
	return &Recipe{
		registry: param.NewRegistry(opts...),
		names:    make(map[string]struct{}),
	}
}

// Registry exposes the shared parameter registry.
func (rc *Recipe) Registry() *param.Registry { return rc.registry }

// AddContribution registers con and pulls its parameters into the shared
// registry under the contribution's tags. The parameter set is snapshotted
// here, so compose the contribution (equation, envelopes) before adding it.
// The weight scales con's residual in the aggregate vector; pass 1 for
// unweighted aggregation.
func (rc *Recipe) AddContribution(con *model.Contribution, weight float64) error {
	if con == nil {
		return ErrNilContribution
	}
	if weight <= 0 || math.IsInf(weight, 0) || math.IsNaN(weight) {
		return fmt.Errorf("%w: %v", ErrBadWeight, weight)
	}
	if _, dup := rc.names[con.Name()]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateContribution, con.Name())
	}

	ps, tags := con.Parameters()
	for i, p := range ps {
		if _, err := rc.registry.Add(p, tags[i]...); err != nil {
			return err
		}
	}

	rc.names[con.Name()] = struct{}{}
	rc.terms = append(rc.terms, term{con: con, weight: weight})

	return nil
}

// Contributions returns the registered contributions in registration order.
func (rc *Recipe) Contributions() []*model.Contribution {
	out := make([]*model.Contribution, len(rc.terms))
	for i, t := range rc.terms {
		out[i] = t.con
	}

	return out
}

// Residual writes values into the free parameters, resolves constraints and
// returns the weighted residuals of every contribution, concatenated in
// registration order. With zero free parameters, pass an empty vector: the
// residual is still computable from the current fixed values.
func (rc *Recipe) Residual(values []float64) ([]float64, error) {
	if len(rc.terms) == 0 {
		return nil, ErrNoContributions
	}
	if err := rc.registry.SetValues(values); err != nil {
		return nil, err
	}
	rc.registry.Resolve()

	var out []float64
	for _, t := range rc.terms {
		res, err := t.con.Residual()
		if err != nil {
			return nil, fmt.Errorf("contribution %q: %w", t.con.Name(), err)
		}
		if t.weight != 1 {
			floats.Scale(t.weight, res)
		}
		out = append(out, res...)
	}

	return out, nil
}

// Rw computes the weighted residual norm over all contributions at the
// current parameter values:
//
//	Rw = sqrt( Σ w·(obs−calc)² / Σ w·obs² )
//
// with w = 1/unc² where an uncertainty channel exists, w = 1 otherwise.
func (rc *Recipe) Rw() (float64, error) {
	if len(rc.terms) == 0 {
		return 0, ErrNoContributions
	}
	rc.registry.Resolve()

	var num, den float64
	for _, t := range rc.terms {
		_, calc, obs, unc, err := t.con.Evaluate()
		if err != nil {
			return 0, fmt.Errorf("contribution %q: %w", t.con.Name(), err)
		}
		for i := range calc {
			w := 1.0
			if unc != nil && unc[i] > 0 {
				w = 1 / (unc[i] * unc[i])
			}
			d := obs[i] - calc[i]
			num += w * d * d
			den += w * obs[i] * obs[i]
		}
	}
	if den == 0 {
		return 0, nil
	}

	return math.Sqrt(num / den), nil
}

// Names returns the free parameter names in registration order.
func (rc *Recipe) Names() []string { return rc.registry.Names() }

// Values returns the free parameter values in registration order.
func (rc *Recipe) Values() []float64 { return rc.registry.Values() }

// Bounds returns the free parameter bound vectors in registration order.
func (rc *Recipe) Bounds() (lower, upper []float64) { return rc.registry.Bounds() }

// SetValues writes a positional vector into the free parameters.
func (rc *Recipe) SetValues(values []float64) error {
	return rc.registry.SetValues(values)
}

// Fix forwards the selectors to the registry.
func (rc *Recipe) Fix(selectors ...string) error { return rc.registry.Fix(selectors...) }

// Free forwards the selectors to the registry.
func (rc *Recipe) Free(selectors ...string) error { return rc.registry.Free(selectors...) }

// Lookup returns the parameter registered under name.
func (rc *Recipe) Lookup(name string) (*param.Parameter, bool) {
	return rc.registry.Lookup(name)
}
