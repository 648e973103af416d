package physics

import (
	"math"

	"github.com/san-kum/craftsim/internal/craft"
)

// Solver steps one craft. It is not safe for concurrent use and must be
// the craft's only writer while it runs.
type Solver struct {
	c   *craft.Craft
	cfg Config
	t   float64
}

// New takes ownership of c.
func New(c *craft.Craft, cfg Config) *Solver {
	return &Solver{c: c, cfg: cfg}
}

func (s *Solver) Craft() *craft.Craft { return s.c }
func (s *Solver) Config() Config      { return s.cfg }

// Time is the simulated time accumulated by Step.
func (s *Solver) Time() float64 { return s.t }

// Step advances the craft by dt: one integration pass, then
// cfg.Iterations relaxation passes evaluated at the new time.
func (s *Solver) Step(dt float64) {
	s.Integrate(dt)
	s.t += dt
	for i := 0; i < s.cfg.Iterations; i++ {
		s.Relax()
	}
}

// Integrate moves every non-fixed node by its implied velocity plus
// gravity and resolves floor contact.
func (s *Solver) Integrate(dt float64) {
	acc := s.cfg.Gravity.Scale(dt * dt)
	for i := range s.c.Nodes {
		n := &s.c.Nodes[i]
		if n.Kind == craft.Fixed {
			continue
		}

		pos := n.Pos
		n.Pos = pos.Add(pos.Sub(n.Prev)).Add(acc)
		n.Prev = pos

		if n.Pos.Y > s.cfg.Floor {
			n.Pos.Y = s.cfg.Floor
			vy := n.Pos.Y - n.Prev.Y
			n.Prev.Y = n.Pos.Y + vy*s.cfg.Restitution
		}
	}
}

// Relax runs a single pass over all rods in order.
func (s *Solver) Relax() {
	nodes := s.c.Nodes
	for _, r := range s.c.Rods {
		a, b := &nodes[r.A], &nodes[r.B]
		delta := b.Pos.Sub(a.Pos)
		length := delta.Len()
		if length == 0 {
			continue
		}

		c, ok := Correction(r, length, s.t, s.cfg)
		if !ok {
			continue
		}

		shift := delta.Scale(c / length)
		if a.Kind != craft.Fixed {
			a.Pos = a.Pos.Add(shift)
		}
		if b.Kind != craft.Fixed {
			b.Pos = b.Pos.Sub(shift)
		}
	}
}

// Correction returns how far each endpoint of r moves toward the other
// when the rod currently measures length at simulated time t. A negative
// value pushes the endpoints apart. ok is false when the rod applies no
// correction.
func Correction(r craft.Rod, length, t float64, cfg Config) (float64, bool) {
	switch r.Kind {
	case craft.Solid:
		return (length - r.RestLength) * 0.5, true
	case craft.Rope:
		if length <= r.RestLength {
			return 0, false
		}
		return (length - r.RestLength) * 0.5, true
	case craft.Spring:
		return (length - r.RestLength) * cfg.SpringStiffness, true
	case craft.Piston:
		return (length - PistonTarget(r, t, cfg)) * 0.5, true
	}
	return 0, false
}

// PistonTarget is the length a piston is driven toward at time t. A
// piston without a valid range holds its rest length.
func PistonTarget(r craft.Rod, t float64, cfg Config) float64 {
	if r.MaxLength <= r.MinLength {
		return r.RestLength
	}
	center := (r.MinLength + r.MaxLength) / 2
	amplitude := (r.MaxLength - r.MinLength) / 2
	return center + amplitude*math.Sin(cfg.PistonFrequency*t)
}

// checkFinite reports the first node whose position is NaN or Inf.
func checkFinite(c *craft.Craft) (int, bool) {
	for i, n := range c.Nodes {
		if !n.Pos.IsFinite() {
			return i, false
		}
	}
	return -1, true
}
