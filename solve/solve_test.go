package solve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSolve_Validation covers the argument guards.
func TestSolve_Validation(t *testing.T) {
	s := NewLM()
	opts := DefaultOptions()

	_, err := s.Solve(nil, nil, nil, nil, opts)
	assert.ErrorIs(t, err, ErrNilResidual)

	fn := func(v []float64) ([]float64, error) { return []float64{0}, nil }

	_, err = s.Solve(fn, []float64{1}, nil, nil, opts)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = s.Solve(fn, []float64{1}, []float64{2}, []float64{1}, opts)
	assert.ErrorIs(t, err, ErrBadBounds)

	empty := func(v []float64) ([]float64, error) { return nil, nil }
	_, err = s.Solve(empty, []float64{1}, []float64{0}, []float64{2}, opts)
	assert.ErrorIs(t, err, ErrEmptyResidual)
}

// TestSolve_ZeroParameters verifies the evaluate-only path.
func TestSolve_ZeroParameters(t *testing.T) {
	calls := 0
	fn := func(v []float64) ([]float64, error) {
		calls++

		return []float64{3, 4}, nil
	}

	res, err := NewLM().Solve(fn, nil, nil, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "single evaluation, no optimizer")
	assert.Empty(t, res.X)
	assert.Equal(t, []float64{3, 4}, res.Residual)
	assert.InDelta(t, 5, res.Norm, 1e-12)
	assert.Nil(t, res.Uncertainty)
}

// TestSolve_UnboundedLinear recovers slope and intercept of exact data.
func TestSolve_UnboundedLinear(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	fn := func(v []float64) ([]float64, error) {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = (1.5*x + 0.7) - (v[0]*x + v[1])
		}

		return out, nil
	}

	inf := math.Inf(1)
	res, err := NewLM().Solve(fn, []float64{0, 0},
		[]float64{-inf, -inf}, []float64{inf, inf}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 1.5, res.X[0], 1e-6)
	assert.InDelta(t, 0.7, res.X[1], 1e-6)
	assert.InDelta(t, 0, res.Norm, 1e-6)
}

// TestSolve_LowerBoundedScale recovers a scale from a zero start at its
// lower bound, the standard starting point of a refinement.
func TestSolve_LowerBoundedScale(t *testing.T) {
	fn := func(v []float64) ([]float64, error) {
		out := make([]float64, 4)
		for i := range out {
			out[i] = 2 - v[0]
		}

		return out, nil
	}

	res, err := NewLM().Solve(fn, []float64{0},
		[]float64{0}, []float64{math.Inf(1)}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2, res.X[0], 1e-6)
	assert.InDelta(t, 0, res.Norm, 1e-6)
}

// TestSolve_ActiveUpperBound verifies a solution pressed against its box:
// the unconstrained optimum is 5, the box ends at 2.
func TestSolve_ActiveUpperBound(t *testing.T) {
	fn := func(v []float64) ([]float64, error) {
		return []float64{v[0] - 5}, nil
	}

	res, err := NewLM().Solve(fn, []float64{1},
		[]float64{0}, []float64{2}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2, res.X[0], 1e-2, "clamped at the upper bound")
	assert.LessOrEqual(t, res.X[0], 2.0, "never leaves the box")
}

// TestSolve_ResidualStaysInBox verifies the residual never observes an
// out-of-range value during optimization.
func TestSolve_ResidualStaysInBox(t *testing.T) {
	fn := func(v []float64) ([]float64, error) {
		require.GreaterOrEqual(t, v[0], 0.0)
		require.LessOrEqual(t, v[0], 10.0)

		return []float64{v[0] - 20}, nil
	}

	_, err := NewLM().Solve(fn, []float64{5}, []float64{0}, []float64{10}, DefaultOptions())
	require.NoError(t, err)
}

// TestSolve_EvaluationErrorSurfaces verifies a failing residual aborts the
// solve with its error.
func TestSolve_EvaluationErrorSurfaces(t *testing.T) {
	boom := assert.AnError
	calls := 0
	fn := func(v []float64) ([]float64, error) {
		calls++
		if calls > 1 {
			return nil, boom
		}

		return []float64{1}, nil
	}

	_, err := NewLM().Solve(fn, []float64{0}, []float64{-1}, []float64{1}, DefaultOptions())
	assert.ErrorIs(t, err, boom)
}

// TestSolve_Uncertainty checks the standard error of a fitted mean against
// the closed form s/sqrt(m).
func TestSolve_Uncertainty(t *testing.T) {
	ys := []float64{1, 2, 3}
	fn := func(v []float64) ([]float64, error) {
		out := make([]float64, len(ys))
		for i, y := range ys {
			out[i] = y - v[0]
		}

		return out, nil
	}

	inf := math.Inf(1)
	res, err := NewLM().Solve(fn, []float64{0}, []float64{-inf}, []float64{inf}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2, res.X[0], 1e-6, "mean of the data")
	require.Len(t, res.Uncertainty, 1)
	assert.InDelta(t, 1/math.Sqrt(3), res.Uncertainty[0], 1e-4)
}

// TestTransform_RoundTrip verifies internal/external are inverse on the
// strict interior, for every bound kind.
func TestTransform_RoundTrip(t *testing.T) {
	inf := math.Inf(1)
	cases := []struct {
		lo, hi, x float64
	}{
		{-inf, inf, 3.7},
		{0, inf, 2.5},
		{-inf, 4, -1.25},
		{0, 2, 1.3},
	}
	for _, c := range cases {
		tr := newTransform(c.lo, c.hi)
		assert.InDelta(t, c.x, tr.external(tr.internal(c.x)), 1e-12)
	}
}

// TestTransform_ImageInsideBox verifies external never escapes the box,
// even for wild internal values.
func TestTransform_ImageInsideBox(t *testing.T) {
	tr := newTransform(0, 2)
	for _, v := range []float64{-1e6, -3, 0, 1e-9, 42, 1e9} {
		x := tr.external(v)
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 2.0)
	}

	lo := newTransform(1, math.Inf(1))
	for _, v := range []float64{-1e6, 0, 1e6} {
		assert.GreaterOrEqual(t, lo.external(v), 1.0)
	}
}
