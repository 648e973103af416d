package physics

import (
	"context"
	"fmt"

	"github.com/san-kum/craftsim/internal/craft"
)

// Metric accumulates a scalar over a run. Observe sees the craft before
// every step and once more after the last one.
type Metric interface {
	Name() string
	Observe(c *craft.Craft, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(c *craft.Craft, step int, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c *craft.Craft, step int, t float64)

func (f ObserverFunc) OnStep(c *craft.Craft, step int, t float64) { f(c, step, t) }

type RunConfig struct {
	Dt     float64 `yaml:"dt" json:"dt"`
	Steps  int     `yaml:"steps" json:"steps"`
	Record bool    `yaml:"record" json:"record"`
}

func (rc RunConfig) Validate() error {
	if rc.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, rc.Dt)
	}
	if rc.Steps < 1 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, rc.Steps)
	}
	return nil
}

// Result holds what a run produced. Frames and Times include the initial
// state, so a completed recorded run has Steps+1 of each.
type Result struct {
	Frames     [][]craft.Vec2
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Node returns the trajectory of node i across recorded frames.
func (r *Result) Node(i int) []craft.Vec2 {
	out := make([]craft.Vec2, 0, len(r.Frames))
	for _, f := range r.Frames {
		if i < len(f) {
			out = append(out, f[i])
		}
	}
	return out
}

type Runner struct {
	solver    *Solver
	metrics   []Metric
	observers []Observer
}

func NewRunner(s *Solver) *Runner {
	return &Runner{
		solver:    s,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) Solver() *Solver { return r.solver }

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run steps the solver rc.Steps times. On cancellation it returns the
// partial result with ctx.Err(). If a node diverges it returns the
// partial result and a *SimulationError wrapping ErrUnstable.
func (r *Runner) Run(ctx context.Context, rc RunConfig) (*Result, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if err := r.solver.cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Times:   make([]float64, 0, rc.Steps+1),
		Metrics: make(map[string]float64),
	}
	if rc.Record {
		result.Frames = make([][]craft.Vec2, 0, rc.Steps+1)
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	c := r.solver.c
	record := func() {
		result.Times = append(result.Times, r.solver.t)
		if rc.Record {
			result.Frames = append(result.Frames, snapshot(c))
		}
	}
	finish := func() {
		for _, m := range r.metrics {
			m.Observe(c, r.solver.t)
			result.Metrics[m.Name()] = m.Value()
		}
	}

	record()
	for i := 0; i < rc.Steps; i++ {
		select {
		case <-ctx.Done():
			finish()
			return result, ctx.Err()
		default:
		}

		for _, m := range r.metrics {
			m.Observe(c, r.solver.t)
		}

		r.solver.Step(rc.Dt)

		if node, ok := checkFinite(c); !ok {
			finish()
			return result, &SimulationError{Step: i, Time: r.solver.t, Node: node, Wrapped: ErrUnstable}
		}

		result.StepsTaken++
		record()
		for _, o := range r.observers {
			o.OnStep(c, i, r.solver.t)
		}
	}

	finish()
	return result, nil
}

func snapshot(c *craft.Craft) []craft.Vec2 {
	out := make([]craft.Vec2, len(c.Nodes))
	for i, n := range c.Nodes {
		out[i] = n.Pos
	}
	return out
}
