package physics

import (
	"context"
	"fmt"

	"github.com/san-kum/craftsim/internal/craft"
	"golang.org/x/sync/errgroup"
)

// Job is one member of an ensemble. Metrics must not be shared between
// jobs since they run concurrently.
type Job struct {
	Name    string
	Config  Config
	Metrics []Metric
}

// Ensemble runs the same craft under several configurations.
type Ensemble struct {
	base  *craft.Craft
	limit int
}

// NewEnsemble never mutates base; every job steps its own clone. A limit
// below 1 defaults to 4 concurrent runs.
func NewEnsemble(base *craft.Craft, limit int) *Ensemble {
	if limit < 1 {
		limit = 4
	}
	return &Ensemble{base: base, limit: limit}
}

// Run returns results in the order jobs were submitted. The first failing
// job cancels the rest.
func (e *Ensemble) Run(ctx context.Context, jobs []Job, rc RunConfig) ([]*Result, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if err := job.Config.Validate(); err != nil {
			return nil, fmt.Errorf("job %q: %w", job.Name, err)
		}
	}

	results := make([]*Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			r := NewRunner(New(e.base.Clone(), job.Config))
			for _, m := range job.Metrics {
				r.AddMetric(m)
			}
			res, err := r.Run(gctx, rc)
			if err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
