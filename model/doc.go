// Package model composes evaluable fit models out of signal generators and
// envelope functions, and binds them to observed data as Contributions.
//
// 🚀 The moving parts:
//
//	  • Generator     — anything producing a simulated signal over a domain,
//	    given its current parameter state. CrystalGenerator (pair-distance
//	    peak sums over a structure.Model) and GaussianGenerator ship here.
//	  • EnvelopeFunc  — a named auxiliary term (particle-size damping, ...)
//	    whose non-domain arguments become fit parameters renamed
//	    "{function}_{arg}" to avoid collisions.
//	  • Contribution  — one composed equation bound to one observed Profile
//	    over a clipped fitting range, exposing residual = observed − calculated
//	    (weighted by uncertainty when present).
//
// ⚙️ Usage:
//
//	prof, _ := model.NewProfile(x, y, dy)
//	prof.SetCalculationRange(1.5, 10, 0.01)
//	con, _ := model.NewContribution("nickel", prof)
//	_ = con.AddGenerator(gen)                       // "G0"
//	_ = con.AddFunction("f0", sphere, []string{"psize"}, nil)
//	_ = con.SetEquation("f0 * G0")
//	res, _ := con.Residual()
//
// Guarantees:
//   - Equations resolve at composition time: with strict symbols enabled an
//     unknown name fails immediately with ErrUnresolvedSymbol; by default it
//     is auto-created as a new free parameter with value 0 (the original
//     behavior — handy for additive background terms, dangerous for typos).
//   - Evaluation is referentially transparent: same parameter state, same
//     output.
//   - The requested fitting range is clipped to the observed extent; a range
//     left unset means "use the observed grid".
package model
