// Package solve adapts an external Levenberg-Marquardt core to the bounded
// positional interface the refinement controller drives.
//
// The underlying optimizer (github.com/maorshutman/lm) is unbounded. Box
// bounds are honored through a smooth change of variables: the optimizer
// walks an unconstrained internal vector, and each coordinate is mapped
// into its box before the residual is evaluated. A two-sided bound uses a
// sine transform, a one-sided bound a hyperbolic shift, and an unbounded
// coordinate passes through unchanged. The mapping is exact: any internal
// point lands strictly inside the box, so the residual never sees an
// out-of-range value.
//
// ⚙️ Entry point
//
//	s := solve.NewLM()
//	res, err := s.Solve(fn, x0, lower, upper, solve.DefaultOptions())
//
// The returned Result carries the solution in external (bounded)
// coordinates, the final residual vector and its norm, and per-coordinate
// uncertainties estimated from the final Jacobian.
//
// Solving with zero parameters is a defined no-op: the residual is
// evaluated once at the current values and returned without touching the
// optimizer.
package solve
