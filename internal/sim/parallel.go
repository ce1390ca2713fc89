package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Job is one independent run of a sweep. Each job needs its own Simulator:
// sources and metrics carry per-run state.
type Job struct {
	Name    string
	Sim     *Simulator
	Initial dynamo.State
	Config  Config
}

// Sweep runs jobs concurrently with at most limit in flight (0 means no
// limit). Results are in job order. The first error cancels the remaining jobs
// and is returned.
func Sweep(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			res, err := job.Sim.Run(ctx, job.Initial, job.Config)
			results[i] = res
			if err != nil {
				return &JobError{Name: job.Name, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

type JobError struct {
	Name string
	Err  error
}

func (e *JobError) Error() string { return "job " + e.Name + ": " + e.Err.Error() }
func (e *JobError) Unwrap() error { return e.Err }
