package control

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"

	"go.viam.com/fieldnav/logging"
)

// Job is one independent run in a batch. Build constructs the stepper; it is called on the worker
// goroutine so each job owns its planner.
type Job struct {
	Name     string
	Build    func() (Stepper, error)
	MaxTicks int
}

// JobResult is the outcome of a single job.
type JobResult struct {
	Name string
	Result
}

// RunBatch runs jobs with at most parallelism of them in flight; parallelism < 1 means no limit.
// Results are returned in job order. The first job to fail cancels the rest.
func RunBatch(ctx context.Context, jobs []Job, parallelism int, logger logging.Logger) ([]JobResult, error) {
	ctx, span := trace.StartSpan(ctx, "control::RunBatch")
	defer span.End()

	results := make([]JobResult, len(jobs))
	errs, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		errs.SetLimit(parallelism)
	}
	for i, job := range jobs {
		i, job := i, job
		errs.Go(func() error {
			stepper, err := job.Build()
			if err != nil {
				return errors.Wrapf(err, "job %q", job.Name)
			}
			res, err := Run(ctx, stepper, RunOptions{MaxTicks: job.MaxTicks}, logger.Sublogger(job.Name))
			if err != nil {
				return errors.Wrapf(err, "job %q", job.Name)
			}
			results[i] = JobResult{Name: job.Name, Result: res}
			return nil
		})
	}
	if err := errs.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
