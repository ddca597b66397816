// Package expr provides the small expression-tree representation used to
// compose fit equations, together with a one-token-lookahead parser and a
// deterministic interpreter.
//
// 🚀 Why a tree and not string evaluation?
//
//	Composed model equations ("G0 * f0 + G1 + slope * x") must be resolved
//	against known generator/function/parameter names exactly once, at
//	composition time, and then evaluated many thousands of times inside the
//	least-squares loop. A sealed set of node kinds gives:
//	  • Const    — a numeric literal
//	  • Symbol   — an unresolved name (only before binding)
//	  • Thunk    — a named scalar source, read lazily (a fit parameter)
//	  • Series   — a named vector source over the domain (a generator or
//	    envelope term)
//	  • Domain   — the independent variable itself
//	  • Add/Sub/Mul/Div/Neg — arithmetic with scalar↔vector broadcasting
//
// ⚙️ Usage:
//
//	node, err := expr.Parse("G0 * f0 + bg")
//	names := expr.Symbols(node)              // ["G0", "f0", "bg"]
//	bound, unresolved := expr.Bind(node, resolve)
//	val, err := bound.Eval(x)                // Value: scalar or vector
//
// Guarantees:
//   - Referential transparency: evaluating a bound tree twice without mutating
//     its sources yields identical output.
//   - Symbols enumerates free symbols in first-appearance order (stable).
//   - Evaluation never re-parses; Parse is a composition-time operation.
package expr
