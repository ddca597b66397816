package reduce_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strufit/strufit/fit"
	"github.com/strufit/strufit/model"
	"github.com/strufit/strufit/reduce"
	"github.com/strufit/strufit/structure"
)

// nickel builds a cubic one-site crystal at the origin.
func nickel(t *testing.T) *structure.Crystal {
	t.Helper()
	lat := structure.NewLattice(3.52, 3.52, 3.52, 90, 90, 90)

	return structure.NewCrystal(structure.Cubic, lat, structure.NewAtom("Ni0", "Ni", 0, 0, 0, 0))
}

// recipeWith wires one crystal generator named G0 into a fresh recipe.
func recipeWith(t *testing.T, stru *structure.Crystal) (*fit.Recipe, *model.CrystalGenerator) {
	t.Helper()
	gen, err := model.NewCrystalGenerator(model.GenConfig{Name: "G0", Structure: stru})
	require.NoError(t, err)

	x := []float64{1, 2, 3, 4}
	y := []float64{0, 0, 0, 0}
	prof, err := model.NewProfile(x, y, nil)
	require.NoError(t, err)

	con, err := model.NewContribution("pdf", prof)
	require.NoError(t, err)
	require.NoError(t, con.AddGenerator(gen))

	rc := fit.NewRecipe()
	require.NoError(t, rc.AddContribution(con, 1))

	return rc, gen
}

// TestInitialize_CubicDefaults verifies the exact free-parameter set for a
// one-site cubic crystal under DefaultOptions: scale, delta2, one lattice
// constant and one displacement factor; the special-position coordinates
// contribute nothing.
func TestInitialize_CubicDefaults(t *testing.T) {
	rc, _ := recipeWith(t, nickel(t))
	require.NoError(t, reduce.Initialize(rc, reduce.DefaultOptions()))

	names := rc.Names()
	sort.Strings(names)
	assert.Equal(t,
		[]string{"G0_Ni0_Biso", "G0_a", "G0_delta2", "G0_scale"},
		names, "exactly the four independent parameters are free")

	// defaults and bounds per category
	scale, ok := rc.Lookup("G0_scale")
	require.True(t, ok)
	assert.Equal(t, 0.0, scale.Value())
	lo, hi := scale.Bounds()
	assert.Equal(t, 0.0, lo)
	assert.True(t, hi > 1e300, "scale unbounded above")

	a, ok := rc.Lookup("G0_a")
	require.True(t, ok)
	assert.Equal(t, 3.52, a.Value())
	lo, hi = a.Bounds()
	assert.Equal(t, 0.0, lo)
	assert.InDelta(t, 7.04, hi, 1e-12, "lattice bounded by twice its value")

	biso, ok := rc.Lookup("G0_Ni0_Biso")
	require.True(t, ok)
	assert.Equal(t, 0.05, biso.Value(), "zero-valued cell falls back to the default")
}

// TestInitialize_TagTriple verifies every generator parameter carries the
// category, the generator name and their union.
func TestInitialize_TagTriple(t *testing.T) {
	rc, _ := recipeWith(t, nickel(t))
	require.NoError(t, reduce.Initialize(rc, reduce.DefaultOptions()))

	a, ok := rc.Lookup("G0_a")
	require.True(t, ok)
	for _, tag := range []string{"lat", "G0", "G0_lat"} {
		assert.True(t, a.HasTag(tag), "missing tag %q", tag)
	}

	require.NoError(t, rc.Fix("G0"))
	assert.Empty(t, rc.Names(), "generator tag selects every emitted parameter")
}

// TestInitialize_LatticeConstraintPropagates verifies Resolve drives every
// symmetry copy from the independent parameter.
func TestInitialize_LatticeConstraintPropagates(t *testing.T) {
	stru := nickel(t)
	rc, _ := recipeWith(t, stru)
	require.NoError(t, reduce.Initialize(rc, reduce.DefaultOptions()))

	a, ok := rc.Lookup("G0_a")
	require.True(t, ok)
	a.SetValue(3.6)
	rc.Registry().Resolve()

	lat := stru.Lattice()
	assert.Equal(t, 3.6, lat.A.Value())
	assert.Equal(t, 3.6, lat.B.Value(), "cubic symmetry copies follow")
	assert.Equal(t, 3.6, lat.C.Value())
}

// TestInitialize_SharedElementADP verifies adp mode "e": two sites of one
// element share a single displacement parameter.
func TestInitialize_SharedElementADP(t *testing.T) {
	lat := structure.NewLattice(3.52, 3.52, 3.52, 90, 90, 90)
	stru := structure.NewCrystal(structure.Cubic, lat,
		structure.NewAtom("Ni0", "Ni", 0, 0, 0, 0),
		structure.NewAtom("Ni1", "Ni", 0.5, 0.5, 0.5, 0),
	)
	rc, _ := recipeWith(t, stru)

	opts := reduce.DefaultOptions()
	opts.ADP = "e"
	require.NoError(t, reduce.Initialize(rc, opts))

	shared, ok := rc.Lookup("G0_Ni_Biso")
	require.True(t, ok, "one parameter per element")
	_, dup := rc.Lookup("G0_Ni0_Biso")
	assert.False(t, dup, "no per-site parameters in element mode")

	shared.SetValue(0.1)
	rc.Registry().Resolve()
	for _, atom := range stru.Atoms() {
		assert.Equal(t, 0.1, atom.Biso.Value(), "both sites driven by the shared parameter")
	}
}

// TestInitialize_XYZRegisteredFixed verifies coordinates arrive fixed,
// unbounded, and renamed by site label.
func TestInitialize_XYZRegisteredFixed(t *testing.T) {
	lat := structure.NewLattice(3.52, 3.52, 3.52, 90, 90, 90)
	atom := structure.NewAtom("Ni0", "Ni", 0.25, 0, 0, 0.05)
	atom.FreeXYZ = [3]bool{true, false, false}
	stru := structure.NewCrystal(structure.Cubic, lat, atom)
	rc, _ := recipeWith(t, stru)

	require.NoError(t, reduce.Initialize(rc, reduce.DefaultOptions()))

	p, ok := rc.Lookup("G0_Ni0_x")
	require.True(t, ok, "reduced coordinate renamed by site label")
	assert.True(t, p.Fixed(), "coordinates start fixed")
	assert.Equal(t, 0.25, p.Value())

	names := rc.Names()
	assert.NotContains(t, names, "G0_Ni0_x", "fixed coordinate is not in the free vector")
}

// TestInitialize_InvalidModes verifies mode validation happens before any
// parameter is created.
func TestInitialize_InvalidModes(t *testing.T) {
	for _, opts := range []reduce.Options{
		{Delta: "3"},
		{Lat: "x"},
		{ADP: "q"},
		{XYZ: "w"},
	} {
		rc, _ := recipeWith(t, nickel(t))
		err := reduce.Initialize(rc, opts)
		assert.ErrorIs(t, err, reduce.ErrInvalidMode)
		assert.Equal(t, 0, rc.Registry().Len(), "nothing registered on invalid mode")
	}

	assert.ErrorIs(t, reduce.Initialize(nil, reduce.DefaultOptions()), reduce.ErrNilRecipe)
	rc, _ := recipeWith(t, nickel(t))
	assert.ErrorIs(t, reduce.AddGenVars(rc, nil, reduce.DefaultOptions()), reduce.ErrNilGenerator)
}

// TestInitialize_AllLatticeMode verifies lat mode "a" exposes all six cells.
func TestInitialize_AllLatticeMode(t *testing.T) {
	rc, _ := recipeWith(t, nickel(t))
	opts := reduce.Options{Lat: "a"}
	require.NoError(t, reduce.Initialize(rc, opts))

	names := rc.Names()
	sort.Strings(names)
	assert.Equal(t,
		[]string{"G0_a", "G0_alpha", "G0_b", "G0_beta", "G0_c", "G0_gamma"},
		names)
}

// TestSanitize covers the label bleaching rules.
func TestSanitize(t *testing.T) {
	assert.Equal(t, "Zn2p", reduce.Sanitize("Zn2+"))
	assert.Equal(t, "O2n", reduce.Sanitize("O2-"))
	assert.Equal(t, "Ni0", reduce.Sanitize("Ni(0)"))
	assert.Equal(t, "", reduce.Sanitize("()[]"))
}
