// Package fit aggregates contributions and the shared parameter registry
// into a Recipe, the single object a solver optimizes.
//
// A Recipe owns one param.Registry and any number of model.Contributions.
// Registering a contribution pulls its parameters into the registry under
// the contribution's tags, so fix/free selectors span the whole refinement.
// The aggregate residual concatenates each contribution's weighted residual
// in registration order, giving the positional vector interface a
// least-squares solver expects.
//
// 🚀 What Recipe delivers
//
//   - Residual(values): write the free-parameter vector back, resolve
//     constraints, evaluate every contribution, concatenate.
//   - Names/Values/Bounds: positional snapshots of the free subset, in a
//     stable registration order.
//   - Fix/Free: tag- or name-based state transitions, forwarded to the
//     registry.
//   - Rw: the scalar weighted residual norm, the standard goodness of fit.
//
// ⚙️ Typical session
//
//	rc := fit.NewRecipe()
//	if err := rc.AddContribution(con, 1.0); err != nil { ... }
//	_ = rc.Fix(param.TagAll)
//	_ = rc.Free("lat")
//	res, err := rc.Residual(rc.Values())
//
// A Recipe is not safe for concurrent mutation; run one refinement per
// Recipe at a time. Independent Recipes share nothing and may run in
// parallel.
package fit
