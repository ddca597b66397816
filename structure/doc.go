// Package structure defines the minimal structural-model surface that the
// refinement core depends on, plus a small concrete Crystal used by tests and
// examples.
//
// 🚀 What does the core actually need from a crystal?
//
//	Exactly four queries (nothing else crosses this boundary):
//	  • independent lattice parameters     — symmetry-reduced lengths/angles
//	  • independent atomic coordinates     — site-symmetry-free x/y/z slots
//	  • independent displacement params    — reduced ADP terms
//	  • atoms grouped by chemical element  — for element-shared ADPs
//
// Full space-group machinery lives in an external crystallography library;
// any type answering these four queries (the Model interface) plugs in. The
// Crystal shipped here answers them from declared crystal-system rules and
// per-atom site flags, which is sufficient for isotropic-ADP refinements and
// for exercising the whole pipeline deterministically.
//
// ⚙️ Usage:
//
//	ni := structure.NewAtom("Ni0", "Ni", 0, 0, 0, 0.05)
//	cr := structure.NewCrystal(structure.Cubic,
//	    structure.NewLattice(3.52, 3.52, 3.52, 90, 90, 90), ni)
//	lat := cr.IndependentLatticeParams() // one quantity "a" driving A, B, C
//
// Guarantees:
//   - All query results are deterministic: same structure, same ordering.
//   - Quantities carry the driven cells, so equality constraints can be wired
//     without this package knowing about the parameter registry.
package structure
