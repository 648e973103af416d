package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		freq float64
		dt   float64
		n    int
	}{
		{2, 0.01, 500},
		{0.5, 1.0 / 60, 600},
		{5, 0.01, 1000},
	}
	for _, tt := range tests {
		got, ok := DominantFrequency(sine(tt.freq, tt.dt, tt.n), tt.dt)
		if !ok {
			t.Errorf("freq %v: no dominant frequency found", tt.freq)
			continue
		}
		resolution := BinFrequency(1, tt.n, tt.dt)
		if math.Abs(got-tt.freq) > resolution {
			t.Errorf("DominantFrequency() = %v, want %v ± %v", got, tt.freq, resolution)
		}
	}
}

func TestDominantFrequencyFlat(t *testing.T) {
	flat := make([]float64, 64)
	for i := range flat {
		flat[i] = 7
	}
	if _, ok := DominantFrequency(flat, 0.1); ok {
		t.Error("flat signal should have no dominant frequency")
	}
	if ps := PowerSpectrum([]float64{1}); ps != nil {
		t.Errorf("PowerSpectrum of one sample = %v, want nil", ps)
	}
}

func TestPowerSpectrumLength(t *testing.T) {
	for _, n := range []int{2, 7, 64, 100} {
		if got := len(PowerSpectrum(make([]float64, n))); got != n/2+1 {
			t.Errorf("len(PowerSpectrum(%d)) = %d, want %d", n, got, n/2+1)
		}
	}
}

func pendulum() *craft.Craft {
	c := craft.New()
	c.Nodes = append(c.Nodes,
		craft.Node{Pos: craft.V(400, 100), Prev: craft.V(400, 100), Kind: craft.Fixed},
		craft.Node{Pos: craft.V(550, 100), Prev: craft.V(550, 100), Kind: craft.Joint},
	)
	c.Rods = append(c.Rods, craft.Rod{A: 0, B: 1, RestLength: 150, Kind: craft.Solid})
	return c
}

func TestLyapunovUniformOffset(t *testing.T) {
	// A free-falling node nudged sideways stays exactly that far apart.
	c := craft.New()
	c.Nodes = append(c.Nodes, craft.Node{Pos: craft.V(0, 0), Prev: craft.V(0, 0)})

	lambda, err := LyapunovExponent(c, physics.DefaultConfig(), 0, 1e-3, 1.0/60, 60)
	if err != nil {
		t.Fatalf("lyapunov failed: %v", err)
	}
	if math.Abs(lambda) > 1e-6 {
		t.Errorf("LyapunovExponent() = %v, want 0", lambda)
	}
	if c.Nodes[0].Pos != craft.V(0, 0) {
		t.Error("input craft was modified")
	}
}

func TestLyapunovInvalid(t *testing.T) {
	c := pendulum()
	if _, err := LyapunovExponent(c, physics.DefaultConfig(), 5, 1e-3, 0.01, 10); !errors.Is(err, craft.ErrNodeNotFound) {
		t.Errorf("error = %v, want ErrNodeNotFound", err)
	}
	if _, err := LyapunovExponent(c, physics.DefaultConfig(), 1, 0, 0.01, 10); !errors.Is(err, physics.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestSetParam(t *testing.T) {
	cfg := physics.DefaultConfig()
	tests := []struct {
		name  string
		value float64
		check func(physics.Config) bool
	}{
		{"gravity", 9.8, func(c physics.Config) bool { return c.Gravity.Y == 9.8 }},
		{"floor", 300, func(c physics.Config) bool { return c.Floor == 300 }},
		{"restitution", 0.9, func(c physics.Config) bool { return c.Restitution == 0.9 }},
		{"stiffness", 0.5, func(c physics.Config) bool { return c.SpringStiffness == 0.5 }},
		{"frequency", 3, func(c physics.Config) bool { return c.PistonFrequency == 3 }},
		{"iterations", 7.6, func(c physics.Config) bool { return c.Iterations == 8 }},
	}
	for _, tt := range tests {
		if err := SetParam(&cfg, tt.name, tt.value); err != nil {
			t.Errorf("SetParam(%q) error: %v", tt.name, err)
			continue
		}
		if !tt.check(cfg) {
			t.Errorf("SetParam(%q, %v) not applied: %+v", tt.name, tt.value, cfg)
		}
	}
	if err := SetParam(&cfg, "mass", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("error = %v, want ErrUnknownParam", err)
	}
}

func TestBifurcationDiagram(t *testing.T) {
	values := []float64{250, 500, 1000}
	rc := physics.RunConfig{Dt: 1.0 / 60, Steps: 600}

	points, err := BifurcationDiagram(context.Background(), pendulum(), physics.DefaultConfig(), "gravity", values, 1, rc, 60)
	if err != nil {
		t.Fatalf("bifurcation failed: %v", err)
	}
	if len(points) != len(values) {
		t.Fatalf("got %d points, want %d", len(points), len(values))
	}
	for i, p := range points {
		if p.Param != values[i] {
			t.Errorf("point %d param = %v, want %v", i, p.Param, values[i])
		}
		if len(p.Values) == 0 {
			t.Errorf("point %d: a swinging pendulum must have peaks", i)
		}
		for _, v := range p.Values {
			if v < 100 || v > 251 {
				t.Errorf("point %d peak %v outside the swing", i, v)
			}
		}
	}

	if out := BifurcationToASCII(points, 30, 10); strings.Count(out, "\n") != 10 {
		t.Errorf("ascii plot has wrong height:\n%s", out)
	}
}

func TestBifurcationRejectsUnknownParam(t *testing.T) {
	_, err := BifurcationDiagram(context.Background(), pendulum(), physics.DefaultConfig(), "mass", []float64{1}, 1, physics.RunConfig{Dt: 0.01, Steps: 10}, 0)
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("error = %v, want ErrUnknownParam", err)
	}
}

func TestPhasePortrait(t *testing.T) {
	frames := [][]craft.Vec2{
		{craft.V(0, 0)},
		{craft.V(1, 0)},
		{craft.V(3, 0)},
	}
	p := NewPhasePortrait(frames, 0, AxisX, 0.5)
	if p == nil || len(p.Points) != 2 {
		t.Fatalf("unexpected portrait: %+v", p)
	}
	if p.Points[1] != (Point{X: 3, Y: 4}) {
		t.Errorf("second point = %v, want {3 4}", p.Points[1])
	}
	if NewPhasePortrait(frames, 2, AxisX, 0.5) != nil {
		t.Error("expected nil for missing node")
	}
	if out := PhasePortraitToASCII(p, 20, 5); strings.Count(out, "•") == 0 {
		t.Errorf("portrait plot has no points:\n%s", out)
	}
}

func TestPoincareSection(t *testing.T) {
	frames := [][]craft.Vec2{
		{craft.V(-1, 10)},
		{craft.V(1, 12)},
		{craft.V(-1, 10)},
		{craft.V(1, 8)},
	}
	s := NewPoincareSection(frames, 0, AxisX, 0, AxisY, 1)
	if s == nil || len(s.Points) != 2 {
		t.Fatalf("unexpected section: %+v", s)
	}
	if s.Points[0] != (Point{X: 12, Y: 2}) || s.Points[1] != (Point{X: 8, Y: -2}) {
		t.Errorf("section points = %v", s.Points)
	}
	if got := PoincareSectionToASCII(&PoincareSection{}, 10, 5); got != "No crossings detected" {
		t.Errorf("empty section plot = %q", got)
	}
}
