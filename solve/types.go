package solve

import "errors"

var (
	// ErrNilResidual is returned when Solve receives a nil residual function.
	ErrNilResidual = errors.New("solve: residual function is nil")

	// ErrDimensionMismatch is returned when x0, lower and upper differ in
	// length.
	ErrDimensionMismatch = errors.New("solve: x0 and bounds differ in length")

	// ErrBadBounds is returned when a lower bound is not below its upper
	// bound.
	ErrBadBounds = errors.New("solve: lower bound must be below upper bound")

	// ErrEmptyResidual is returned when the residual function produces an
	// empty vector.
	ErrEmptyResidual = errors.New("solve: residual vector is empty")
)

// Residual evaluates the model at the given free-parameter values and
// returns the residual vector. The solver treats it as a black box.
type Residual func(values []float64) ([]float64, error)

// Options are the optimizer tolerances, passed through to the
// Levenberg-Marquardt core.
type Options struct {
	// Tau scales the initial damping. Smaller starts closer to Gauss-Newton.
	Tau float64
	// Eps1 is the gradient-norm stopping threshold.
	Eps1 float64
	// Eps2 is the step-size stopping threshold.
	Eps2 float64
	// ObjectiveTol stops when the objective falls below it.
	ObjectiveTol float64
	// Iterations caps the number of optimizer iterations.
	Iterations int
}

// DefaultOptions returns the conventional tolerances.
func DefaultOptions() Options {
	return Options{
		Tau:          1e-6,
		Eps1:         1e-8,
		Eps2:         1e-8,
		ObjectiveTol: 1e-16,
		Iterations:   100,
	}
}

// Result is one completed solve.
type Result struct {
	// X is the solution in external (bounded) coordinates.
	X []float64
	// Residual is the residual vector at X.
	Residual []float64
	// Norm is the Euclidean norm of Residual.
	Norm float64
	// Uncertainty holds the per-coordinate standard errors estimated from
	// the final Jacobian; nil when the estimate is unavailable (singular
	// normal matrix or zero parameters).
	Uncertainty []float64
}

// Solver minimizes a residual over box-bounded parameters. Implementations
// must treat a zero-length x0 as an evaluate-only call.
type Solver interface {
	Solve(fn Residual, x0, lower, upper []float64, opts Options) (Result, error)
}
