package model

import (
	"fmt"
	"strings"

	"github.com/strufit/strufit/expr"
	"github.com/strufit/strufit/param"
)

// envelope is a registered EnvelopeFunc with its renamed argument parameters.
type envelope struct {
	name string
	fn   EnvelopeFunc
	args []*param.Parameter // renamed "{name}_{arg}", in declaration order
}

// eval applies the envelope over x with the current argument values.
func (e *envelope) eval(x []float64) ([]float64, error) {
	vals := make([]float64, len(e.args))
	for i, p := range e.args {
		vals[i] = p.Value()
	}

	return e.fn(x, vals...)
}

// Contribution binds one composed model equation to one observed Profile over
// a calculation domain, and exposes the residual observed − calculated.
//
// All names registered on a Contribution (generators, functions, parameters)
// share one namespace; collisions fail with ErrDuplicateTerm at registration
// time, never at evaluation time.
type Contribution struct {
	name  string
	xname string

	profile *Profile

	gens     map[string]Generator
	genOrder []string

	envs     map[string]*envelope
	envOrder []string

	params     map[string]*param.Parameter
	paramOrder []string
	paramTags  map[string][]string

	eqn    expr.Node
	eqnSrc string
	strict bool
}

// NewContribution creates a Contribution bound to prof. The name must be a
// valid identifier; the independent variable symbol defaults to "x".
func NewContribution(name string, prof *Profile, opts ...Option) (*Contribution, error) {
	if !validIdent(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if prof == nil {
		return nil, ErrNilProfile
	}

	c := &Contribution{
		name:      name,
		xname:     "x",
		profile:   prof,
		gens:      make(map[string]Generator),
		envs:      make(map[string]*envelope),
		params:    make(map[string]*param.Parameter),
		paramTags: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Name returns the contribution's name.
func (c *Contribution) Name() string { return c.name }

// XName returns the independent variable symbol.
func (c *Contribution) XName() string { return c.xname }

// Profile returns the bound observed data.
func (c *Contribution) Profile() *Profile { return c.profile }

// taken reports whether name is already used by any term of the contribution.
func (c *Contribution) taken(name string) bool {
	if name == c.xname {
		return true
	}
	if _, ok := c.gens[name]; ok {
		return true
	}
	if _, ok := c.envs[name]; ok {
		return true
	}
	_, ok := c.params[name]

	return ok
}

// AddGenerator registers g under its own name.
func (c *Contribution) AddGenerator(g Generator) error {
	if g == nil {
		return ErrNilGenerator
	}
	if !validIdent(g.Name()) {
		return fmt.Errorf("%w: %q", ErrBadName, g.Name())
	}
	if c.taken(g.Name()) {
		return fmt.Errorf("%w: %q", ErrDuplicateTerm, g.Name())
	}
	c.gens[g.Name()] = g
	c.genOrder = append(c.genOrder, g.Name())

	return nil
}

// Generators returns the registered generators in registration order.
func (c *Contribution) Generators() []Generator {
	out := make([]Generator, len(c.genOrder))
	for i, n := range c.genOrder {
		out[i] = c.gens[n]
	}

	return out
}

// AddFunction registers an envelope function under name. Its non-domain
// arguments argNames are exposed as new parameters renamed "{name}_{arg}"
// (collision avoidance between functions and generators). defaults supplies
// initial argument values; nil means all zero.
func (c *Contribution) AddFunction(name string, fn EnvelopeFunc, argNames []string, defaults []float64) error {
	if fn == nil {
		return fmt.Errorf("%w: %q has nil func", ErrBadArgs, name)
	}
	if !validIdent(name) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if c.taken(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateTerm, name)
	}
	if defaults != nil && len(defaults) != len(argNames) {
		return fmt.Errorf("%w: %d args, %d defaults", ErrBadArgs, len(argNames), len(defaults))
	}

	env := &envelope{name: name, fn: fn}
	for i, arg := range argNames {
		if !validIdent(arg) {
			return fmt.Errorf("%w: argument %q", ErrBadArgs, arg)
		}
		renamed := name + "_" + arg
		if c.taken(renamed) {
			return fmt.Errorf("%w: %q", ErrDuplicateTerm, renamed)
		}
		v := 0.0
		if defaults != nil {
			v = defaults[i]
		}
		p := param.New(renamed, v)
		env.args = append(env.args, p)
		c.registerParam(p, name)
	}
	c.envs[name] = env
	c.envOrder = append(c.envOrder, name)

	return nil
}

// registerParam records a contribution-level parameter and its tag.
func (c *Contribution) registerParam(p *param.Parameter, tag string) {
	c.params[p.Name()] = p
	c.paramOrder = append(c.paramOrder, p.Name())
	c.paramTags[p.Name()] = []string{tag}
}

// Parameters returns the contribution-level parameters (envelope arguments
// and auto-created equation symbols) in creation order, with their tags.
func (c *Contribution) Parameters() (ps []*param.Parameter, tags [][]string) {
	for _, n := range c.paramOrder {
		ps = append(ps, c.params[n])
		tags = append(tags, c.paramTags[n])
	}

	return ps, tags
}

// Parameter returns a contribution-level parameter by name.
func (c *Contribution) Parameter(name string) (*param.Parameter, bool) {
	p, ok := c.params[name]

	return p, ok
}

// resolve maps an equation symbol to its term node.
func (c *Contribution) resolve(name string) (expr.Node, bool) {
	if name == c.xname {
		return expr.Domain{Name: c.xname}, true
	}
	if g, ok := c.gens[name]; ok {
		return expr.Vector(name, g.Eval), true
	}
	if e, ok := c.envs[name]; ok {
		return expr.Vector(name, e.eval), true
	}
	if p, ok := c.params[name]; ok {
		return expr.Scalar(name, p.Value), true
	}

	return nil, false
}

// SetEquation parses src and binds every symbol against the registered
// generator, function and parameter names plus the domain symbol.
//
// Unresolved symbols are auto-created as new free parameters with value 0
// (tagged by their first underscore-separated component), the additive-term
// convenience. With WithStrictSymbols the same situation fails with
// ErrUnresolvedSymbol instead, naming the symbols.
func (c *Contribution) SetEquation(src string) error {
	node, err := expr.Parse(src)
	if err != nil {
		return err
	}

	bound, err := c.bind(node)
	if err != nil {
		return err
	}

	c.eqn = bound
	c.eqnSrc = src

	return nil
}

// SetExpression accepts a combinator-built tree instead of a string,
// resolving its symbols under the same rules as SetEquation.
func (c *Contribution) SetExpression(node expr.Node) error {
	bound, err := c.bind(node)
	if err != nil {
		return err
	}

	c.eqn = bound
	c.eqnSrc = node.String()

	return nil
}

// bind resolves node's symbols, auto-creating parameters for unresolved
// names unless strict mode is on.
func (c *Contribution) bind(node expr.Node) (expr.Node, error) {
	bound, unresolved := expr.Bind(node, c.resolve)
	if len(unresolved) == 0 {
		return bound, nil
	}
	if c.strict {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedSymbol, strings.Join(unresolved, ", "))
	}
	for _, name := range unresolved {
		c.registerParam(param.New(name, 0), strings.SplitN(name, "_", 2)[0])
	}
	bound, unresolved = expr.Bind(node, c.resolve)
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedSymbol, strings.Join(unresolved, ", "))
	}

	return bound, nil
}

// Equation returns the source form of the current equation ("" when unset).
func (c *Contribution) Equation() string { return c.eqnSrc }

// equation returns the bound tree, defaulting to the sum of all registered
// generators when no equation was set.
func (c *Contribution) equation() (expr.Node, error) {
	if c.eqn != nil {
		return c.eqn, nil
	}
	if len(c.genOrder) == 0 {
		return nil, ErrNoEquation
	}

	var node expr.Node
	for _, n := range c.genOrder {
		term := expr.Vector(n, c.gens[n].Eval)
		if node == nil {
			node = term
		} else {
			node = expr.Add(node, term)
		}
	}

	return node, nil
}

// Evaluate computes the model over the clipped fitting range.
// Returns the domain, the calculated signal, the observed signal and the
// observed uncertainties (nil when the profile has none).
func (c *Contribution) Evaluate() (grid, calc, obs, unc []float64, err error) {
	eqn, err := c.equation()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	grid, err = c.profile.Grid()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	val, err := eqn.Eval(grid)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	calc = val.Materialize(len(grid))

	obs, unc = c.profile.Observed(grid)

	return grid, calc, obs, unc, nil
}

// Residual computes observed − calculated over the fitting range, dividing
// pointwise by the uncertainty where one is available and nonzero.
func (c *Contribution) Residual() ([]float64, error) {
	_, calc, obs, unc, err := c.Evaluate()
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(calc))
	for i := range out {
		out[i] = obs[i] - calc[i]
		if unc != nil && unc[i] > 0 {
			out[i] /= unc[i]
		}
	}

	return out, nil
}
