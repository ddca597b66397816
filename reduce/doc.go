// Package reduce maps structural models onto fit parameters.
//
// The constraint reducer walks every refinable generator in a recipe and
// emits the independent parameters a refinement actually optimizes: overall
// scale, peak-sharpening coefficients, symmetry-reduced lattice constants,
// displacement factors and free coordinates. Each emitted parameter is
// registered in the recipe's registry and every structural cell it governs
// is constrained to it, so writing the parameter propagates into the model
// before the next residual evaluation.
//
// ✨ Naming and tagging
//
// Parameter names follow "{generator}_{quantity}" ("G0_scale", "G0_a",
// "G0_Ni0_Biso"). Every generator-level parameter carries three tags: its
// category ("scale", "delta", "lat", "adp", "xyz"), the generator name
// ("G0") and their union ("G0_lat"), so schedules can free a category
// across all phases, one phase entirely, or one category of one phase.
//
// ⚙️ Modes
//
// Each category is driven by a mode string on Options (empty string skips
// the category):
//
//	Delta  "1" | "2"        which sharpening coefficient to expose
//	Lat    "s" | "a"        symmetry-reduced or all six lattice cells
//	ADP    "a" | "e" | "s"  per-site, per-element shared, or reduced
//	XYZ    "s" | "a"        site-symmetry-free or all coordinates
//
// DefaultOptions gives the conventional starting point: scale and delta2
// exposed, symmetry-reduced lattice, per-site displacement factors, and
// coordinates registered but fixed.
package reduce
