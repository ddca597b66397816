// Package param owns the canonical set of named fit variables: their current
// value, box bounds, fixed/free state and tag memberships, plus the equality
// constraints that tie dependent model quantities to their independent
// representative.
//
// 🚀 What is a Registry?
//
//	The single source of truth for one refinement. Every optimization
//	variable lives here exactly once, under a unique name, carrying any
//	number of tags ("lat", "G0", "G0_lat", ...). The external least-squares
//	solver only ever sees the *free* parameters, as positional vectors in a
//	stable insertion order:
//	  • Add / NewVar     — register a Parameter (duplicate names rejected)
//	  • Constrain        — dependent cell := representative parameter
//	  • Fix / Free       — bulk state transitions by tag or name
//	  • Values / Bounds  — positional vectors over the free set
//	  • Resolve          — push representative values into dependents
//
// ⚙️ Usage:
//
//	reg := param.NewRegistry()
//	p, err := reg.NewVar("G0_scale", 1.0, "scale", "G0", "G0_scale")
//	if err != nil { ... }
//	_ = p.SetBounds(0, math.Inf(1))
//	_ = reg.Fix("all")
//	_ = reg.Free("scale")
//
// Guarantees:
//   - Values()/Bounds()/Names() orders are identical between successive calls
//     while the free set is unchanged (solvers operate on positional vectors).
//   - Resolve() makes every dependent cell equal its representative's current
//     value; dependents are never optimized directly.
//   - No global state: a Registry is an explicit handle, safe to use from one
//     goroutine at a time.
package param
