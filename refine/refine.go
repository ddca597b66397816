package refine

import (
	"errors"
	"fmt"

	"github.com/strufit/strufit/fit"
	"github.com/strufit/strufit/param"
	"github.com/strufit/strufit/solve"
)

var (
	// ErrNilRecipe is returned when Refine receives a nil recipe.
	ErrNilRecipe = errors.New("refine: recipe is nil")

	// ErrEmptySchedule is returned for a schedule with no stages or a stage
	// with no tags.
	ErrEmptySchedule = errors.New("refine: schedule is empty")

	// ErrUnknownScheduleTag is returned when a schedule names a tag the
	// registry does not know. Raised during validation, before any
	// parameter state changes.
	ErrUnknownScheduleTag = errors.New("refine: unknown schedule tag")
)

// Stage is one group of selectors freed together.
type Stage []string

// Schedule is the ordered stage list of one refinement.
type Schedule []Stage

// StageError reports a solver failure in one stage. The registry keeps the
// values written by the last completed stage.
type StageError struct {
	// Stage is the zero-based index of the failed stage.
	Stage int
	// Tags is the selector group the stage freed.
	Tags []string
	// Err is the underlying solver error.
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("refine: stage %d (tags %v): %v", e.Stage, e.Tags, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Report is the outcome of a completed refinement.
type Report struct {
	// Names are the free parameter names after the final stage.
	Names []string
	// Values are the refined values, aligned with Names.
	Values []float64
	// Uncertainties are the standard errors from the final stage, aligned
	// with Names; nil when the estimate was unavailable.
	Uncertainties []float64
	// Rw is the weighted residual norm at the refined values.
	Rw float64
	// Stages holds each stage's solver result, in execution order.
	Stages []solve.Result
}

// options collects the Refine knobs.
type options struct {
	solver    solve.Solver
	solveOpts solve.Options
	validate  bool
	onFree    func(stage int, tags []string)
	onStage   func(stage int, res solve.Result)
}

// Option adjusts how Refine runs.
type Option func(*options)

// WithSolver replaces the default Levenberg-Marquardt solver.
func WithSolver(s solve.Solver) Option {
	return func(o *options) { o.solver = s }
}

// WithSolveOptions replaces the default solver tolerances.
func WithSolveOptions(so solve.Options) Option {
	return func(o *options) { o.solveOpts = so }
}

// WithoutValidation skips the upfront schedule check; unknown tags are then
// handled by the registry's own Free semantics.
func WithoutValidation() Option {
	return func(o *options) { o.validate = false }
}

// WithOnFree observes each freeing step before its solve starts.
func WithOnFree(fn func(stage int, tags []string)) Option {
	return func(o *options) { o.onFree = fn }
}

// WithOnStage observes each completed stage with its solver result.
func WithOnStage(fn func(stage int, res solve.Result)) Option {
	return func(o *options) { o.onStage = fn }
}

func defaultOptions() options {
	return options{
		solver:    solve.NewLM(),
		solveOpts: solve.DefaultOptions(),
		validate:  true,
	}
}

// Refine fixes every parameter, then walks the schedule: each stage frees
// its tag group on top of everything already free and solves the recipe's
// residual over the current free set. Solutions are written back between
// stages. Returns the final report, or a StageError wrapping the first
// solver failure.
func Refine(rc *fit.Recipe, schedule Schedule, opts ...Option) (Report, error) {
	if rc == nil {
		return Report{}, ErrNilRecipe
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	if len(schedule) == 0 {
		return Report{}, ErrEmptySchedule
	}
	for i, stage := range schedule {
		if len(stage) == 0 {
			return Report{}, fmt.Errorf("%w: stage %d has no tags", ErrEmptySchedule, i)
		}
		if !o.validate {
			continue
		}
		for _, tag := range stage {
			if !rc.Registry().Has(tag) {
				return Report{}, fmt.Errorf("%w: stage %d frees %q", ErrUnknownScheduleTag, i, tag)
			}
		}
	}

	if err := rc.Fix(param.TagAll); err != nil {
		return Report{}, err
	}

	rep := Report{Stages: make([]solve.Result, 0, len(schedule))}
	for i, stage := range schedule {
		if err := rc.Free(stage...); err != nil {
			return rep, fmt.Errorf("refine: stage %d: %w", i, err)
		}
		if o.onFree != nil {
			o.onFree(i, stage)
		}

		lower, upper := rc.Bounds()
		res, err := o.solver.Solve(rc.Residual, rc.Values(), lower, upper, o.solveOpts)
		if err != nil {
			return rep, &StageError{Stage: i, Tags: stage, Err: err}
		}
		if len(res.X) > 0 {
			if err := rc.SetValues(res.X); err != nil {
				return rep, &StageError{Stage: i, Tags: stage, Err: err}
			}
			rc.Registry().Resolve()
		}

		rep.Stages = append(rep.Stages, res)
		if o.onStage != nil {
			o.onStage(i, res)
		}
	}

	rep.Names = rc.Names()
	rep.Values = rc.Values()
	rep.Uncertainties = rep.Stages[len(rep.Stages)-1].Uncertainty

	rw, err := rc.Rw()
	if err != nil {
		return rep, err
	}
	rep.Rw = rw

	return rep, nil
}
