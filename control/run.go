// Package control drives planners: synchronously to completion, on a fixed-rate clock, or many
// at once.
package control

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/fieldnav/logging"
	"go.viam.com/fieldnav/motionplan"
)

// Stepper is anything advanced one tick at a time. *motionplan.Planner is the canonical one.
type Stepper interface {
	Step() motionplan.StepResult
}

// Outcome is how a run ended.
type Outcome string

// The possible run outcomes.
const (
	OutcomeArrived         = Outcome("arrived")
	OutcomeBudgetExhausted = Outcome("budget_exhausted")
	OutcomeCanceled        = Outcome("canceled")
)

// Result summarizes a run.
type Result struct {
	Outcome Outcome `json:"outcome"`
	// Ticks counts the steps that moved or tried to move the agent.
	Ticks          int                           `json:"ticks"`
	Final          motionplan.StepResult         `json:"-"`
	StatusCounts   map[motionplan.Status]int     `json:"status_counts"`
	Resolutions    map[motionplan.Resolution]int `json:"resolutions"`
	EscapeEpisodes int                           `json:"escape_episodes"`
	Elapsed        time.Duration                 `json:"elapsed"`
}

func newResult() Result {
	return Result{
		StatusCounts: map[motionplan.Status]int{},
		Resolutions:  map[motionplan.Resolution]int{},
	}
}

// record folds a step into the result and reports whether the run is over.
func (r *Result) record(res motionplan.StepResult) bool {
	r.Final = res
	if !res.Continuing {
		r.Outcome = OutcomeArrived
		return true
	}
	r.Ticks++
	r.StatusCounts[res.Status]++
	r.Resolutions[res.Resolution]++
	if res.Status == motionplan.StatusStagnant || res.Status == motionplan.StatusOscillating {
		r.EscapeEpisodes++
	}
	return false
}

// StepFunc observes each completed tick.
type StepFunc func(tick int, res motionplan.StepResult)

// RunOptions bound a synchronous run.
type RunOptions struct {
	MaxTicks int
	OnStep   StepFunc
	// Clock measures elapsed time; nil means the wall clock.
	Clock clock.Clock
}

// Run steps until the agent arrives, MaxTicks moving ticks have been taken, or ctx is done. On
// cancellation the partial result is returned along with ctx's error.
func Run(ctx context.Context, stepper Stepper, opts RunOptions, logger logging.Logger) (Result, error) {
	ctx, span := trace.StartSpan(ctx, "control::Run")
	defer span.End()

	if opts.MaxTicks <= 0 {
		return Result{}, errors.Errorf("max ticks must be positive, got %d", opts.MaxTicks)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	start := clk.Now()
	result := newResult()

	for result.Ticks < opts.MaxTicks {
		if err := ctx.Err(); err != nil {
			result.Outcome = OutcomeCanceled
			result.Elapsed = clk.Since(start)
			logger.CDebugw(ctx, "run canceled", "ticks", result.Ticks)
			return result, err
		}
		res := stepper.Step()
		if result.record(res) {
			break
		}
		if opts.OnStep != nil {
			opts.OnStep(result.Ticks, res)
		}
	}
	if result.Outcome == "" {
		result.Outcome = OutcomeBudgetExhausted
	}
	result.Elapsed = clk.Since(start)
	span.AddAttributes(
		trace.StringAttribute("outcome", string(result.Outcome)),
		trace.Int64Attribute("ticks", int64(result.Ticks)),
	)
	logger.CDebugw(ctx, "run finished",
		"outcome", result.Outcome,
		"ticks", result.Ticks,
		"escape_episodes", result.EscapeEpisodes,
	)
	return result, nil
}
