package expr

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for parsing and evaluation.
var (
	// ErrEmptyExpression is returned by Parse for blank input.
	ErrEmptyExpression = errors.New("expr: empty expression")

	// ErrParse is returned by Parse for malformed input.
	ErrParse = errors.New("expr: parse error")

	// ErrUnboundSymbol is returned when evaluating a tree that still contains
	// an unresolved Symbol node.
	ErrUnboundSymbol = errors.New("expr: unbound symbol")

	// ErrLengthMismatch is returned when two vector operands differ in length.
	ErrLengthMismatch = errors.New("expr: vector length mismatch")
)

// Value is the result of evaluating a Node: either a scalar or a vector over
// the evaluation domain. Vector == nil means scalar.
type Value struct {
	Scalar float64
	Vector []float64
}

// IsVector reports whether the value carries a per-domain-point vector.
func (v Value) IsVector() bool { return v.Vector != nil }

// Materialize returns the value as a vector of length n, broadcasting a
// scalar when necessary. The returned slice is freshly allocated for scalars
// and shared for vectors.
func (v Value) Materialize(n int) []float64 {
	if v.Vector != nil {
		return v.Vector
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v.Scalar
	}

	return out
}

// Node is one vertex of a composed equation tree. The node set is sealed:
// all implementations live in this package.
type Node interface {
	// Eval computes the node's value over the domain x.
	Eval(x []float64) (Value, error)
	// String renders a deterministic, parenthesized form.
	String() string

	walk(fn func(Node))
}

// Const is a numeric literal.
type Const struct{ V float64 }

// Num builds a Const node.
func Num(v float64) Const { return Const{V: v} }

func (c Const) Eval([]float64) (Value, error) { return Value{Scalar: c.V}, nil }
func (c Const) String() string                { return strconv.FormatFloat(c.V, 'g', -1, 64) }
func (c Const) walk(fn func(Node))            { fn(c) }

// Symbol is an unresolved name. Trees returned by Parse contain Symbol nodes
// until Bind replaces them; evaluating one is an error.
type Symbol struct{ Name string }

// Var builds a Symbol node.
func Var(name string) Symbol { return Symbol{Name: name} }

func (s Symbol) Eval([]float64) (Value, error) {
	return Value{}, fmt.Errorf("%w: %q", ErrUnboundSymbol, s.Name)
}
func (s Symbol) String() string     { return s.Name }
func (s Symbol) walk(fn func(Node)) { fn(s) }

// Thunk is a named scalar source read lazily at evaluation time, typically a
// fit parameter's current value.
type Thunk struct {
	Name string
	F    func() float64
}

// Scalar builds a Thunk node.
func Scalar(name string, f func() float64) Thunk { return Thunk{Name: name, F: f} }

func (t Thunk) Eval([]float64) (Value, error) { return Value{Scalar: t.F()}, nil }
func (t Thunk) String() string                { return t.Name }
func (t Thunk) walk(fn func(Node))            { fn(t) }

// Series is a named vector source over the domain: a generator's signal or an
// envelope function applied to the domain and its argument parameters.
type Series struct {
	Name string
	F    func(x []float64) ([]float64, error)
}

// Vector builds a Series node.
func Vector(name string, f func(x []float64) ([]float64, error)) Series {
	return Series{Name: name, F: f}
}

func (s Series) Eval(x []float64) (Value, error) {
	v, err := s.F(x)
	if err != nil {
		return Value{}, err
	}

	return Value{Vector: v}, nil
}
func (s Series) String() string     { return s.Name }
func (s Series) walk(fn func(Node)) { fn(s) }

// Domain stands for the independent variable vector itself.
type Domain struct{ Name string }

func (d Domain) Eval(x []float64) (Value, error) { return Value{Vector: x}, nil }
func (d Domain) String() string {
	if d.Name == "" {
		return "x"
	}

	return d.Name
}
func (d Domain) walk(fn func(Node)) { fn(d) }

// binOp is the arithmetic operator of a binary node.
type binOp byte

const (
	opAdd binOp = '+'
	opSub binOp = '-'
	opMul binOp = '*'
	opDiv binOp = '/'
)

// binary applies op elementwise with scalar↔vector broadcasting.
type binary struct {
	op   binOp
	l, r Node
}

// Add builds l + r.
func Add(l, r Node) Node { return binary{op: opAdd, l: l, r: r} }

// Sub builds l - r.
func Sub(l, r Node) Node { return binary{op: opSub, l: l, r: r} }

// Mul builds l * r.
func Mul(l, r Node) Node { return binary{op: opMul, l: l, r: r} }

// Div builds l / r. Division by zero follows IEEE-754 (Inf/NaN), as the
// solver treats non-finite residuals as its own failure mode.
func Div(l, r Node) Node { return binary{op: opDiv, l: l, r: r} }

func (b binary) apply(l, r float64) float64 {
	switch b.op {
	case opAdd:
		return l + r
	case opSub:
		return l - r
	case opMul:
		return l * r
	default:
		return l / r
	}
}

func (b binary) Eval(x []float64) (Value, error) {
	lv, err := b.l.Eval(x)
	if err != nil {
		return Value{}, err
	}
	rv, err := b.r.Eval(x)
	if err != nil {
		return Value{}, err
	}

	// scalar ∘ scalar
	if !lv.IsVector() && !rv.IsVector() {
		return Value{Scalar: b.apply(lv.Scalar, rv.Scalar)}, nil
	}

	// at least one vector: broadcast the other side
	var n int
	switch {
	case lv.IsVector() && rv.IsVector():
		if len(lv.Vector) != len(rv.Vector) {
			return Value{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(lv.Vector), len(rv.Vector))
		}
		n = len(lv.Vector)
	case lv.IsVector():
		n = len(lv.Vector)
	default:
		n = len(rv.Vector)
	}

	out := make([]float64, n)
	for i := range out {
		var l, r float64
		if lv.IsVector() {
			l = lv.Vector[i]
		} else {
			l = lv.Scalar
		}
		if rv.IsVector() {
			r = rv.Vector[i]
		} else {
			r = rv.Scalar
		}
		out[i] = b.apply(l, r)
	}

	return Value{Vector: out}, nil
}

func (b binary) String() string {
	return "(" + b.l.String() + " " + string(b.op) + " " + b.r.String() + ")"
}

func (b binary) walk(fn func(Node)) {
	fn(b)
	b.l.walk(fn)
	b.r.walk(fn)
}

// Negate builds -n.
func Negate(n Node) Node { return neg{n: n} }

type neg struct{ n Node }

func (u neg) Eval(x []float64) (Value, error) {
	v, err := u.n.Eval(x)
	if err != nil {
		return Value{}, err
	}
	if !v.IsVector() {
		return Value{Scalar: -v.Scalar}, nil
	}
	out := make([]float64, len(v.Vector))
	for i, f := range v.Vector {
		out[i] = -f
	}

	return Value{Vector: out}, nil
}

func (u neg) String() string     { return "(-" + u.n.String() + ")" }
func (u neg) walk(fn func(Node)) { fn(u); u.n.walk(fn) }

// Symbols returns the free (unresolved) symbol names of n, in
// first-appearance order, without duplicates.
func Symbols(n Node) []string {
	seen := make(map[string]struct{})
	var out []string
	n.walk(func(m Node) {
		s, ok := m.(Symbol)
		if !ok {
			return
		}
		if _, dup := seen[s.Name]; dup {
			return
		}
		seen[s.Name] = struct{}{}
		out = append(out, s.Name)
	})

	return out
}

// Bind replaces every Symbol node for which resolve returns a replacement,
// and reports the names it could not resolve, in first-appearance order.
// The input tree is not mutated.
func Bind(n Node, resolve func(name string) (Node, bool)) (Node, []string) {
	var unresolved []string
	seen := make(map[string]struct{})

	var rebuild func(Node) Node
	rebuild = func(m Node) Node {
		switch v := m.(type) {
		case Symbol:
			if repl, ok := resolve(v.Name); ok {
				return repl
			}
			if _, dup := seen[v.Name]; !dup {
				seen[v.Name] = struct{}{}
				unresolved = append(unresolved, v.Name)
			}

			return v
		case binary:
			return binary{op: v.op, l: rebuild(v.l), r: rebuild(v.r)}
		case neg:
			return neg{n: rebuild(v.n)}
		default:
			return m
		}
	}

	return rebuild(n), unresolved
}
