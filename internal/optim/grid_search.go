package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/craftsim/internal/analysis"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
	"golang.org/x/sync/errgroup"
)

var ErrNoStableTrial = errors.New("optim: every trial failed")

// Trial is one point of the grid and what the craft scored there.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch tries every combination of the given physics parameter
// values (see analysis.Params) and keeps the one with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
	limit      int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d params with %d ranges", physics.ErrInvalidConfig, len(params), len(ranges))
	}
	var probe physics.Config
	for i, name := range params {
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", physics.ErrInvalidConfig, name)
		}
		if err := analysis.SetParam(&probe, name, ranges[i][0]); err != nil {
			return nil, err
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, limit: 4}, nil
}

// Maximize flips the search to keep the highest metric instead.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Limit bounds the number of concurrent runs.
func (g *GridSearch) Limit(n int) *GridSearch {
	if n > 0 {
		g.limit = n
	}
	return g
}

// Combinations lists every grid point in row-major order.
func (g *GridSearch) Combinations() []map[string]float64 {
	out := make([]map[string]float64, 0)
	g.collect(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		g.collect(depth+1, next, out)
	}
}

// Search runs c at every grid point and scores it with the metric
// newMetric builds. Failing runs are kept in the trial list with their
// error but never win. c is not modified.
func (g *GridSearch) Search(
	ctx context.Context,
	c *craft.Craft,
	base physics.Config,
	rc physics.RunConfig,
	newMetric func(cfg physics.Config) physics.Metric,
) (Trial, []Trial, error) {
	combos := g.Combinations()
	trials := make([]Trial, len(combos))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit)

	for i, params := range combos {
		i, params := i, params
		eg.Go(func() error {
			trials[i] = g.run(gctx, c, base, rc, params, newMetric)
			// a failed trial is a result, not a reason to stop the grid
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return Trial{}, trials, err
	}

	best := -1
	for i, t := range trials {
		if t.Err != nil {
			continue
		}
		if best < 0 || g.better(t.Value, trials[best].Value) {
			best = i
		}
	}
	if best < 0 {
		return Trial{}, trials, ErrNoStableTrial
	}
	return trials[best], trials, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) run(
	ctx context.Context,
	c *craft.Craft,
	base physics.Config,
	rc physics.RunConfig,
	params map[string]float64,
	newMetric func(cfg physics.Config) physics.Metric,
) Trial {
	t := Trial{Params: params, Value: math.NaN()}

	cfg := base
	for name, v := range params {
		if err := analysis.SetParam(&cfg, name, v); err != nil {
			t.Err = err
			return t
		}
	}

	m := newMetric(cfg)
	r := physics.NewRunner(physics.New(c.Clone(), cfg))
	r.AddMetric(m)
	res, err := r.Run(ctx, rc)
	if err != nil {
		t.Err = err
		return t
	}
	t.Value = res.Metrics[m.Name()]
	return t
}
