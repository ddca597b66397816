// Package refine drives a staged refinement: a schedule of tag groups is
// freed cumulatively, and after each freeing step the bounded solver is run
// against the recipe's residual.
//
// Stages execute strictly in order. Entering stage k frees every parameter
// matched by the k-th tag group while everything freed by earlier stages
// stays free, so the free set only ever grows across a schedule. The
// solver's solution is written back into the registry before the next
// stage begins, which is what makes staging worthwhile: each stage starts
// from the best values found so far.
//
// ✨ Typical schedule
//
//	rep, err := refine.Refine(rc, refine.Schedule{
//		{"scale"},
//		{"lat", "adp"},
//		{"delta"},
//	})
//
// The schedule is validated against the registry before anything is
// touched: an unknown tag fails with ErrUnknownScheduleTag and no solver
// call is made. A stage whose solve fails aborts with a StageError naming
// the stage; the registry keeps the values written by the last completed
// stage.
//
// ⚙️ Observability
//
// Hooks observe the run without participating in it: WithOnFree fires
// after each freeing step, WithOnStage after each completed solve. Both
// default to nil.
package refine
