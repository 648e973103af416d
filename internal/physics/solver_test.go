package physics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/craftsim/internal/craft"
)

func pendulum(kind craft.RodKind, free craft.Vec2, rest float64) *craft.Craft {
	c := craft.New()
	c.Nodes = append(c.Nodes,
		craft.Node{Pos: craft.V(0, 0), Prev: craft.V(0, 0), Kind: craft.Fixed},
		craft.Node{Pos: free, Prev: free, Kind: craft.Joint},
	)
	c.Rods = append(c.Rods, craft.Rod{A: 0, B: 1, RestLength: rest, Kind: kind})
	return c
}

func weightless() Config {
	cfg := DefaultConfig()
	cfg.Gravity = craft.Vec2{}
	return cfg
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative restitution", func(c *Config) { c.Restitution = -0.1 }},
		{"restitution above one", func(c *Config) { c.Restitution = 1.5 }},
		{"negative stiffness", func(c *Config) { c.SpringStiffness = -1 }},
		{"nan gravity", func(c *Config) { c.Gravity.Y = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestIntegrateFreeFall(t *testing.T) {
	c := craft.New()
	c.Nodes = append(c.Nodes, craft.Node{Kind: craft.Joint})
	s := New(c, DefaultConfig())

	s.Integrate(0.1)
	n := c.Nodes[0]
	if math.Abs(n.Pos.Y-5) > 1e-9 || n.Pos.X != 0 {
		t.Errorf("Pos = %v, want (0, 5)", n.Pos)
	}
	if n.Prev != (craft.Vec2{}) {
		t.Errorf("Prev = %v, want pre-step position", n.Prev)
	}

	s.Integrate(0.1)
	if math.Abs(c.Nodes[0].Pos.Y-15) > 1e-9 {
		t.Errorf("second step Pos.Y = %v, want 15", c.Nodes[0].Pos.Y)
	}
}

func TestIntegrateKeepsMomentum(t *testing.T) {
	c := craft.New()
	c.Nodes = append(c.Nodes, craft.Node{Pos: craft.V(10, 0), Prev: craft.V(7, 0), Kind: craft.Joint})
	New(c, weightless()).Integrate(1.0 / 60)
	if got := c.Nodes[0].Pos; got != craft.V(13, 0) {
		t.Errorf("Pos = %v, want (13, 0)", got)
	}
}

func TestFloorBounce(t *testing.T) {
	c := craft.New()
	c.Nodes = append(c.Nodes, craft.Node{Pos: craft.V(4, 599), Prev: craft.V(2, 589), Kind: craft.Joint})
	s := New(c, weightless())

	s.Integrate(1.0 / 60)
	n := c.Nodes[0]
	if n.Pos.Y != 600 {
		t.Fatalf("Pos.Y = %v, want clamped to 600", n.Pos.Y)
	}
	if n.Pos.X != 6 {
		t.Errorf("Pos.X = %v, horizontal motion must be untouched", n.Pos.X)
	}
	if v := n.Velocity(); math.Abs(v.Y+0.3) > 1e-9 || v.X != 2 {
		t.Errorf("Velocity = %v, want (2, -0.3)", v)
	}
}

func TestFixedNodesNeverIntegrate(t *testing.T) {
	c := craft.New()
	c.Nodes = append(c.Nodes, craft.Node{Pos: craft.V(1, 2), Prev: craft.V(0, 0), Kind: craft.Fixed})
	New(c, DefaultConfig()).Integrate(1)
	if c.Nodes[0].Pos != craft.V(1, 2) {
		t.Errorf("fixed node moved to %v", c.Nodes[0].Pos)
	}
}

func TestCorrection(t *testing.T) {
	cfg := DefaultConfig()
	piston := craft.Rod{Kind: craft.Piston, RestLength: 150, MinLength: 100, MaxLength: 200}

	tests := []struct {
		name   string
		rod    craft.Rod
		length float64
		t      float64
		want   float64
		ok     bool
	}{
		{"solid stretched", craft.Rod{Kind: craft.Solid, RestLength: 100}, 110, 0, 5, true},
		{"solid compressed", craft.Rod{Kind: craft.Solid, RestLength: 100}, 90, 0, -5, true},
		{"rope stretched", craft.Rod{Kind: craft.Rope, RestLength: 100}, 110, 0, 5, true},
		{"rope slack", craft.Rod{Kind: craft.Rope, RestLength: 100}, 90, 0, 0, false},
		{"rope taut", craft.Rod{Kind: craft.Rope, RestLength: 100}, 100, 0, 0, false},
		{"spring stretched", craft.Rod{Kind: craft.Spring, RestLength: 100}, 110, 0, 2, true},
		{"spring compressed", craft.Rod{Kind: craft.Spring, RestLength: 100}, 50, 0, -10, true},
		{"piston at center", piston, 160, 0, 5, true},
		{"piston extended", piston, 160, math.Pi / 2, -20, true},
		{"piston retracted", piston, 160, 3 * math.Pi / 2, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Correction(tt.rod, tt.length, tt.t, cfg)
			if ok != tt.ok {
				t.Fatalf("Correction() ok = %v, want %v", ok, tt.ok)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Correction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPistonTargetWithoutRange(t *testing.T) {
	r := craft.Rod{Kind: craft.Piston, RestLength: 42}
	if got := PistonTarget(r, 1.3, DefaultConfig()); got != 42 {
		t.Errorf("PistonTarget() = %v, want rest length 42", got)
	}
}

func TestRelaxSkipsZeroLength(t *testing.T) {
	c := craft.New()
	c.Nodes = append(c.Nodes,
		craft.Node{Pos: craft.V(5, 5), Prev: craft.V(5, 5)},
		craft.Node{Pos: craft.V(5, 5), Prev: craft.V(5, 5)},
	)
	c.Rods = append(c.Rods, craft.Rod{A: 0, B: 1, RestLength: 10, Kind: craft.Solid})

	New(c, DefaultConfig()).Relax()
	for i, n := range c.Nodes {
		if !n.Pos.IsFinite() || n.Pos != craft.V(5, 5) {
			t.Errorf("node %d = %v, want untouched", i, n.Pos)
		}
	}
}

func TestRelaxSplitsBetweenJoints(t *testing.T) {
	c := craft.New()
	c.Nodes = append(c.Nodes,
		craft.Node{Pos: craft.V(0, 0), Kind: craft.Joint},
		craft.Node{Pos: craft.V(120, 0), Kind: craft.Joint},
	)
	c.Rods = append(c.Rods, craft.Rod{A: 0, B: 1, RestLength: 100, Kind: craft.Solid})

	New(c, weightless()).Relax()
	if math.Abs(c.Nodes[0].Pos.X-10) > 1e-9 || math.Abs(c.Nodes[1].Pos.X-110) > 1e-9 {
		t.Errorf("nodes = %v, %v, want (10,0) and (110,0)", c.Nodes[0].Pos, c.Nodes[1].Pos)
	}
}

func TestStepAdvancesTime(t *testing.T) {
	s := New(craft.New(), DefaultConfig())
	for i := 0; i < 4; i++ {
		s.Step(0.25)
	}
	if s.Time() != 1 {
		t.Errorf("Time() = %v, want 1", s.Time())
	}
}

func TestRunnerRun(t *testing.T) {
	r := NewRunner(New(pendulum(craft.Solid, craft.V(100, 0), 100), DefaultConfig()))

	var seen int
	r.AddObserver(ObserverFunc(func(_ *craft.Craft, step int, _ float64) {
		if step != seen {
			t.Errorf("observer step = %d, want %d", step, seen)
		}
		seen++
	}))

	res, err := r.Run(context.Background(), RunConfig{Dt: 0.01, Steps: 10, Record: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.StepsTaken != 10 || seen != 10 {
		t.Errorf("StepsTaken = %d, observed = %d, want 10", res.StepsTaken, seen)
	}
	if len(res.Frames) != 11 || len(res.Times) != 11 {
		t.Errorf("got %d frames and %d times, want 11", len(res.Frames), len(res.Times))
	}
	if got := res.Node(0); len(got) != 11 || got[10] != craft.V(0, 0) {
		t.Errorf("fixed node trajectory = %v", got)
	}
	if math.Abs(res.Times[10]-0.1) > 1e-12 {
		t.Errorf("final time = %v, want 0.1", res.Times[10])
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	r := NewRunner(New(craft.New(), DefaultConfig()))
	tests := []struct {
		name string
		rc   RunConfig
	}{
		{"zero dt", RunConfig{Dt: 0, Steps: 1}},
		{"negative dt", RunConfig{Dt: -0.1, Steps: 1}},
		{"zero steps", RunConfig{Dt: 0.1, Steps: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Run(context.Background(), tt.rc); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Run() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(New(pendulum(craft.Rope, craft.V(0, 100), 100), DefaultConfig()))
	res, err := r.Run(ctx, RunConfig{Dt: 0.01, Steps: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if res == nil || res.StepsTaken != 0 {
		t.Errorf("expected empty partial result, got %+v", res)
	}
}

func TestRunnerUnstable(t *testing.T) {
	c := craft.New()
	c.Nodes = append(c.Nodes, craft.Node{Pos: craft.V(0, 0), Prev: craft.V(math.NaN(), 0)})

	_, err := NewRunner(New(c, DefaultConfig())).Run(context.Background(), RunConfig{Dt: 0.01, Steps: 5})
	if !errors.Is(err, ErrUnstable) {
		t.Fatalf("Run() error = %v, want ErrUnstable", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("error %T is not a *SimulationError", err)
	}
	if simErr.Step != 0 || simErr.Node != 0 {
		t.Errorf("SimulationError = %+v, want step 0 node 0", simErr)
	}
}

type countMetric struct{ n float64 }

func (m *countMetric) Name() string                  { return "count" }
func (m *countMetric) Observe(*craft.Craft, float64) { m.n++ }
func (m *countMetric) Value() float64                { return m.n }
func (m *countMetric) Reset()                        { m.n = 0 }

func TestRunnerMetrics(t *testing.T) {
	r := NewRunner(New(craft.New(), DefaultConfig()))
	r.AddMetric(&countMetric{n: 99})

	res, err := r.Run(context.Background(), RunConfig{Dt: 0.1, Steps: 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := res.Metrics["count"]; got != 4 {
		t.Errorf("count = %v, want 4 observations", got)
	}
}

func TestEnsembleOrder(t *testing.T) {
	base := craft.New()
	base.Nodes = append(base.Nodes, craft.Node{Kind: craft.Joint})

	gravities := []float64{300, 100, 200, 50}
	jobs := make([]Job, len(gravities))
	for i, g := range gravities {
		cfg := DefaultConfig()
		cfg.Gravity = craft.V(0, g)
		jobs[i] = Job{Name: "g", Config: cfg, Metrics: []Metric{&countMetric{}}}
	}

	results, err := NewEnsemble(base, 2).Run(context.Background(), jobs, RunConfig{Dt: 0.01, Steps: 10, Record: true})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i, g := range gravities {
		// 10 steps of Verlet free fall cover g*dt^2*(1+2+...+10).
		want := g * 1e-4 * 55
		got := results[i].Frames[10][0].Y
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("result %d y = %v, want %v", i, got, want)
		}
	}
	if base.Nodes[0].Pos != (craft.Vec2{}) {
		t.Errorf("base craft mutated: %v", base.Nodes[0].Pos)
	}
}

func TestEnsembleRejectsBadJob(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 0
	_, err := NewEnsemble(craft.New(), 0).Run(context.Background(), []Job{{Name: "bad", Config: cfg}}, RunConfig{Dt: 0.1, Steps: 1})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Run() error = %v, want ErrInvalidConfig", err)
	}
}
