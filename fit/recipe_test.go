package fit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strufit/strufit/fit"
	"github.com/strufit/strufit/model"
	"github.com/strufit/strufit/param"
)

// scaleGen multiplies a constant vector by a named scale parameter.
type scaleGen struct {
	name  string
	scale *param.Parameter
	base  float64
}

func (g *scaleGen) Name() string { return g.name }
func (g *scaleGen) Eval(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = g.scale.Value() * g.base
	}

	return out, nil
}

// buildContribution assembles a one-generator contribution whose observed
// data is obs everywhere, and returns the scale parameter.
func buildContribution(t *testing.T, name string, obs float64) (*model.Contribution, *param.Parameter) {
	t.Helper()
	x := []float64{0, 1, 2, 3}
	y := make([]float64, len(x))
	for i := range y {
		y[i] = obs
	}
	prof, err := model.NewProfile(x, y, nil)
	require.NoError(t, err)

	con, err := model.NewContribution(name, prof)
	require.NoError(t, err)

	scale := param.New(name+"_scale", 1)
	require.NoError(t, con.AddGenerator(&scaleGen{name: "G0", scale: scale, base: 1}))

	return con, scale
}

// addScaled registers con and its scale parameter under the "scale" tag.
func addScaled(t *testing.T, rc *fit.Recipe, con *model.Contribution, scale *param.Parameter, weight float64) {
	t.Helper()
	require.NoError(t, rc.AddContribution(con, weight))
	_, err := rc.Registry().Add(scale, "scale")
	require.NoError(t, err)
}

// TestRecipe_Validation covers the AddContribution guards.
func TestRecipe_Validation(t *testing.T) {
	rc := fit.NewRecipe()
	assert.ErrorIs(t, rc.AddContribution(nil, 1), fit.ErrNilContribution)

	con, _ := buildContribution(t, "c", 2)
	assert.ErrorIs(t, rc.AddContribution(con, 0), fit.ErrBadWeight)
	assert.ErrorIs(t, rc.AddContribution(con, -1), fit.ErrBadWeight)
	require.NoError(t, rc.AddContribution(con, 1))

	dup, _ := buildContribution(t, "c", 2)
	assert.ErrorIs(t, rc.AddContribution(dup, 1), fit.ErrDuplicateContribution)

	_, err := fit.NewRecipe().Residual(nil)
	assert.ErrorIs(t, err, fit.ErrNoContributions)
}

// TestRecipe_ResidualWritesBack verifies the positional round trip:
// Residual(values) must apply values before evaluating.
func TestRecipe_ResidualWritesBack(t *testing.T) {
	rc := fit.NewRecipe()
	con, scale := buildContribution(t, "c", 2)
	addScaled(t, rc, con, scale, 1)

	require.Equal(t, []string{"c_scale"}, rc.Names())

	res, err := rc.Residual([]float64{2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, scale.Value(), "vector written back before evaluation")
	for _, r := range res {
		assert.InDelta(t, 0, r, 1e-12, "scale 2 matches observed 2")
	}
}

// TestRecipe_FixedAllResidualComputable verifies the post-construction
// contract: with every parameter fixed, Values() is empty and the residual
// is still computable from the stored values.
func TestRecipe_FixedAllResidualComputable(t *testing.T) {
	rc := fit.NewRecipe()
	con, scale := buildContribution(t, "c", 2)
	addScaled(t, rc, con, scale, 1)
	require.NoError(t, rc.Fix(param.TagAll))

	assert.Empty(t, rc.Values())
	assert.Empty(t, rc.Names())

	res, err := rc.Residual(nil)
	require.NoError(t, err)
	assert.Len(t, res, 4, "residual evaluates with zero free parameters")
}

// TestRecipe_ConcatenationAndWeights verifies multi-contribution residual
// order and per-contribution scaling.
func TestRecipe_ConcatenationAndWeights(t *testing.T) {
	rc := fit.NewRecipe()
	a, sa := buildContribution(t, "a", 2)
	b, sb := buildContribution(t, "b", 3)
	addScaled(t, rc, a, sa, 1)
	addScaled(t, rc, b, sb, 0.5)

	// scale=1 everywhere: a's residual is 2−1=1, b's is (3−1)·0.5=1.
	res, err := rc.Residual(rc.Values())
	require.NoError(t, err)
	require.Len(t, res, 8, "4 points per contribution, concatenated")
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1.0, res[i], 1e-12, "first block unweighted")
	}
	for i := 4; i < 8; i++ {
		assert.InDelta(t, 1.0, res[i], 1e-12, "second block weighted by 0.5")
	}
}

// TestRecipe_FixFreeSelectors verifies tag-based transitions through the
// recipe surface.
func TestRecipe_FixFreeSelectors(t *testing.T) {
	rc := fit.NewRecipe()
	con, scale := buildContribution(t, "c", 2)
	addScaled(t, rc, con, scale, 1)

	require.NoError(t, rc.Fix("scale"))
	assert.Empty(t, rc.Names())

	require.NoError(t, rc.Free("c_scale"))
	assert.Equal(t, []string{"c_scale"}, rc.Names())

	assert.ErrorIs(t, rc.Fix("nope"), param.ErrUnknownTag)

	p, ok := rc.Lookup("c_scale")
	require.True(t, ok)
	assert.Equal(t, "c_scale", p.Name())
}

// TestRecipe_Rw verifies the weighted residual norm.
func TestRecipe_Rw(t *testing.T) {
	rc := fit.NewRecipe()
	con, scale := buildContribution(t, "c", 2)
	addScaled(t, rc, con, scale, 1)
	require.NoError(t, rc.Fix(param.TagAll))

	// calc = obs: perfect fit.
	scale.SetValue(2)
	rw, err := rc.Rw()
	require.NoError(t, err)
	assert.InDelta(t, 0, rw, 1e-12)

	// calc = 1, obs = 2: Rw = sqrt(4·1 / 4·4) = 0.5.
	scale.SetValue(1)
	rw, err = rc.Rw()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rw, 1e-12)
}
