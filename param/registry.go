package param

import "fmt"

// TagAll is the selector understood by Fix/Free that matches every parameter.
const TagAll = "all"

// constraint is a one-way value dependency: dep := rep.Value() on Resolve.
type constraint struct {
	dep Cell
	rep *Parameter
}

// Registry owns the canonical set of Parameters for one refinement.
//
// Ordering contract: parameters are kept in insertion order, and the vectors
// returned by Names/Values/Bounds enumerate the free subset in that order.
// The order is identical between successive calls while the free set is
// unchanged, which the positional solver interface relies on.
type Registry struct {
	order       []*Parameter
	byName      map[string]*Parameter
	byTag       map[string][]*Parameter
	constraints []constraint
	validate    bool
}

// NewRegistry creates an empty Registry. Validation of Fix/Free selectors is
// enabled unless WithoutValidation is supplied.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName:   make(map[string]*Parameter),
		byTag:    make(map[string][]*Parameter),
		validate: true,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Add registers p under its name with the given tags.
// The parameter's own name is always usable as a Fix/Free selector.
// Returns ErrDuplicateName when the name is already taken.
func (r *Registry) Add(p *Parameter, tags ...string) (*Parameter, error) {
	if p == nil {
		return nil, ErrNilParameter
	}
	if p.name == "" {
		return nil, ErrEmptyName
	}
	if _, exists := r.byName[p.name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, p.name)
	}

	r.order = append(r.order, p)
	r.byName[p.name] = p
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		p.addTag(tag)
		r.byTag[tag] = append(r.byTag[tag], p)
	}

	return p, nil
}

// NewVar creates a free Parameter with the given name and value, registers it
// with the tags, and returns it. Shorthand for New + Add.
func (r *Registry) NewVar(name string, value float64, tags ...string) (*Parameter, error) {
	return r.Add(New(name, value), tags...)
}

// Constrain establishes the one-way dependency dep := rep. The representative
// must already be registered; the dependent cell is never optimized directly.
// Constraining the same cell again replaces its representative.
func (r *Registry) Constrain(dep Cell, rep *Parameter) error {
	if dep == nil || rep == nil {
		return ErrNilParameter
	}
	if _, ok := r.byName[rep.name]; !ok || r.byName[rep.name] != rep {
		return fmt.Errorf("%w: %q", ErrNotRegistered, rep.name)
	}
	for i := range r.constraints {
		if r.constraints[i].dep == dep {
			r.constraints[i].rep = rep

			return nil
		}
	}
	r.constraints = append(r.constraints, constraint{dep: dep, rep: rep})

	return nil
}

// Resolve copies every representative's current value into its dependents.
// Must run before any residual evaluation; idempotent.
func (r *Registry) Resolve() {
	for _, c := range r.constraints {
		c.dep.SetValue(c.rep.value)
	}
}

// Lookup returns the parameter registered under name.
func (r *Registry) Lookup(name string) (*Parameter, bool) {
	p, ok := r.byName[name]

	return p, ok
}

// Has reports whether selector matches a known tag or parameter name.
func (r *Registry) Has(selector string) bool {
	if selector == TagAll {
		return true
	}
	if _, ok := r.byTag[selector]; ok {
		return true
	}
	_, ok := r.byName[selector]

	return ok
}

// matched returns the parameters selected by a tag or name selector.
func (r *Registry) matched(selector string) []*Parameter {
	if selector == TagAll {
		return r.order
	}
	if ps, ok := r.byTag[selector]; ok {
		return ps
	}
	if p, ok := r.byName[selector]; ok {
		return []*Parameter{p}
	}

	return nil
}

// Fix sets fixed=true for every parameter matched by each selector (a tag,
// a parameter name, or TagAll). Unknown selectors return ErrUnknownTag unless
// validation is disabled, in which case they silently no-op.
func (r *Registry) Fix(selectors ...string) error {
	return r.setFixed(true, selectors)
}

// Free sets fixed=false for every parameter matched by each selector.
// Unknown selectors behave as in Fix.
func (r *Registry) Free(selectors ...string) error {
	return r.setFixed(false, selectors)
}

func (r *Registry) setFixed(fixed bool, selectors []string) error {
	for _, sel := range selectors {
		ps := r.matched(sel)
		if ps == nil && sel != TagAll {
			if r.validate {
				return fmt.Errorf("%w: %q", ErrUnknownTag, sel)
			}

			continue
		}
		for _, p := range ps {
			p.fixed = fixed
		}
	}

	return nil
}

// All returns every registered parameter in insertion order.
// The returned slice is a copy; the parameters are shared.
func (r *Registry) All() []*Parameter {
	out := make([]*Parameter, len(r.order))
	copy(out, r.order)

	return out
}

// FreeParameters returns the free parameters in insertion order.
func (r *Registry) FreeParameters() []*Parameter {
	out := make([]*Parameter, 0, len(r.order))
	for _, p := range r.order {
		if !p.fixed {
			out = append(out, p)
		}
	}

	return out
}

// Names returns the names of the free parameters, in insertion order.
func (r *Registry) Names() []string {
	free := r.FreeParameters()
	out := make([]string, len(free))
	for i, p := range free {
		out[i] = p.name
	}

	return out
}

// Values returns the values of the free parameters, in insertion order.
func (r *Registry) Values() []float64 {
	free := r.FreeParameters()
	out := make([]float64, len(free))
	for i, p := range free {
		out[i] = p.value
	}

	return out
}

// Bounds returns the lower and upper bound vectors of the free parameters,
// in insertion order.
func (r *Registry) Bounds() (lower, upper []float64) {
	free := r.FreeParameters()
	lower = make([]float64, len(free))
	upper = make([]float64, len(free))
	for i, p := range free {
		lower[i], upper[i] = p.lower, p.upper
	}

	return lower, upper
}

// SetValues writes a positional value vector back into the free parameters.
// Returns ErrLengthMismatch when len(values) differs from the free count.
func (r *Registry) SetValues(values []float64) error {
	free := r.FreeParameters()
	if len(values) != len(free) {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(values), len(free))
	}
	for i, p := range free {
		p.value = values[i]
	}

	return nil
}

// SetByName writes values into parameters by name, free or fixed. When
// ignoreUnknown is false, the first unknown name aborts with ErrUnknownName;
// values before it are already applied, in map iteration order. Pass known
// names or ignoreUnknown=true when partial application is unacceptable.
func (r *Registry) SetByName(values map[string]float64, ignoreUnknown bool) error {
	for name, v := range values {
		p, ok := r.byName[name]
		if !ok {
			if ignoreUnknown {
				continue
			}

			return fmt.Errorf("%w: %q", ErrUnknownName, name)
		}
		p.value = v
	}

	return nil
}

// ValueMap returns name → value over every registered parameter.
func (r *Registry) ValueMap() map[string]float64 {
	out := make(map[string]float64, len(r.order))
	for _, p := range r.order {
		out[p.name] = p.value
	}

	return out
}

// Len returns the total number of registered parameters.
func (r *Registry) Len() int { return len(r.order) }
