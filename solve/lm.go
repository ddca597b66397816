package solve

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LM is the default Solver: a Levenberg-Marquardt core with a numeric
// Jacobian, box-bounded through the package's variable transforms.
type LM struct{}

// NewLM creates the default solver.
func NewLM() *LM { return &LM{} }

// Solve minimizes fn over the box [lower, upper] starting from x0.
// A zero-length x0 evaluates fn once and returns without optimizing.
func (s *LM) Solve(fn Residual, x0, lower, upper []float64, opts Options) (Result, error) {
	if fn == nil {
		return Result{}, ErrNilResidual
	}
	if len(lower) != len(x0) || len(upper) != len(x0) {
		return Result{}, fmt.Errorf("%w: x0 %d, lower %d, upper %d",
			ErrDimensionMismatch, len(x0), len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] >= upper[i] {
			return Result{}, fmt.Errorf("%w: coordinate %d has [%v, %v]",
				ErrBadBounds, i, lower[i], upper[i])
		}
	}

	if len(x0) == 0 {
		res, err := fn(nil)
		if err != nil {
			return Result{}, err
		}

		return Result{Residual: res, Norm: floats.Norm(res, 2)}, nil
	}

	probe, err := fn(x0)
	if err != nil {
		return Result{}, err
	}
	if len(probe) == 0 {
		return Result{}, ErrEmptyResidual
	}
	size := len(probe)

	trs := transforms(lower, upper)

	// The core's residual signature cannot fail; remember the first
	// evaluation error and surface it after the run.
	var evalErr error
	internalFn := func(dst, t []float64) {
		res, err := fn(externalize(trs, t))
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			for i := range dst {
				dst[i] = 0
			}

			return
		}
		copy(dst, res)
	}

	jac := lm.NumJac{Func: internalFn}
	prob := lm.LMProblem{
		Dim:        len(x0),
		Size:       size,
		Func:       internalFn,
		Jac:        jac.Jac,
		InitParams: internalize(trs, x0),
		Tau:        opts.Tau,
		Eps1:       opts.Eps1,
		Eps2:       opts.Eps2,
	}

	lmRes, err := lm.LM(prob, &lm.Settings{
		Iterations:   opts.Iterations,
		ObjectiveTol: opts.ObjectiveTol,
	})
	if evalErr != nil {
		return Result{}, evalErr
	}
	if err != nil {
		return Result{}, fmt.Errorf("solve: %w", err)
	}

	x := externalize(trs, lmRes.X)
	res, err := fn(x)
	if err != nil {
		return Result{}, err
	}

	return Result{
		X:           x,
		Residual:    res,
		Norm:        floats.Norm(res, 2),
		Uncertainty: uncertainties(fn, x, lower, upper, res),
	}, nil
}

// uncertainties estimates per-coordinate standard errors from the final
// Jacobian: sqrt of the diagonal of (JᵀJ)⁻¹ scaled by the reduced
// chi-square. Returns nil when the normal matrix is singular or the system
// is underdetermined.
func uncertainties(fn Residual, x, lower, upper, res []float64) []float64 {
	n, m := len(x), len(res)
	if n == 0 || m <= n {
		return nil
	}

	jac := mat.NewDense(m, n, nil)
	col := make([]float64, m)
	xs := make([]float64, n)
	for j := 0; j < n; j++ {
		h := math.Sqrt(2.2e-16) * math.Max(1, math.Abs(x[j]))
		copy(xs, x)
		// Step backward when forward stepping would leave the box.
		if xs[j]+h > upper[j] {
			h = -h
		}
		xs[j] += h
		if xs[j] < lower[j] {
			return nil
		}
		pres, err := fn(xs)
		if err != nil || len(pres) != m {
			return nil
		}
		for i := 0; i < m; i++ {
			col[i] = (pres[i] - res[i]) / h
		}
		jac.SetCol(j, col)
	}
	// restore the registry state left by the probe calls
	if _, err := fn(x); err != nil {
		return nil
	}

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return nil
	}

	s2 := floats.Dot(res, res) / float64(m-n)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		v := inv.At(j, j) * s2
		if v < 0 {
			v = 0
		}
		out[j] = math.Sqrt(v)
	}

	return out
}
