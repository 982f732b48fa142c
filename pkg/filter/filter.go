// Package filter evaluates job conditions and selects the tasks of a run.
package filter

import (
	"context"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/logging"
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxParallel bounds concurrent condition evaluation when Options
// leaves it unset.
const DefaultMaxParallel = 8

// Options contains configuration for condition evaluation
type Options struct {
	// MaxParallel caps how many conditions run at once.
	MaxParallel int
	// Logger defaults to the "filter" component logger when nil.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxParallel < 1 {
		o.MaxParallel = DefaultMaxParallel
	}
	if o.Logger == nil {
		l := logging.GetLogger("filter")
		o.Logger = &l
	}
	return o
}

// Evaluate runs every job's condition concurrently and returns all jobs,
// in input order, tagged with whether they are included. A job without a
// condition is always included. The first condition error cancels the
// rest and is returned as CONDITION_FAILED.
func Evaluate(ctx context.Context, jobs []types.Job, opts Options) ([]types.Task, error) {
	opts = opts.withDefaults()
	tasks := make([]types.Task, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxParallel)

	for i, job := range jobs {
		i, job := i, job
		tasks[i] = types.Task{Job: job}
		if !job.HasCondition() {
			tasks[i].Included = true
			continue
		}
		g.Go(func() error {
			ok, err := job.Condition(gCtx)
			if err != nil {
				return errors.Wrapf(err, errors.ErrConditionFailed, "condition of %q failed", job.Name).
					WithDetail("job", job.Name)
			}
			tasks[i].Included = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range tasks {
		opts.Logger.Debug().
			Str("job", t.Name).
			Bool("included", t.Included).
			Msg("Evaluated condition")
	}
	return tasks, nil
}

// Select returns the included subsequence of evaluated tasks in input
// order. When no task is included it returns the NOTHING_TO_DO termination
// signal.
func Select(tasks []types.Task) ([]types.Task, error) {
	included := Included(tasks)
	if len(included) == 0 {
		return nil, errors.NothingToDo()
	}
	return included, nil
}

// Included returns the subsequence of tasks that are included.
func Included(tasks []types.Task) []types.Task {
	out := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Included {
			out = append(out, t)
		}
	}
	return out
}
