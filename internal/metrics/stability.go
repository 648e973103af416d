package metrics

import (
	"math"

	"github.com/san-kum/craftsim/internal/craft"
)

// Stability is the fraction of observed frames in which every node
// stays finite and within threshold of the origin on both axes.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(c *craft.Craft, _ float64) {
	s.samples++
	for _, n := range c.Nodes {
		if !n.Pos.IsFinite() || math.Abs(n.Pos.X) > s.threshold || math.Abs(n.Pos.Y) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// FloorContacts counts node-frames spent resting on the floor.
type FloorContacts struct {
	name     string
	floor    float64
	contacts int
}

func NewFloorContacts(floor float64) *FloorContacts {
	return &FloorContacts{name: "floor_contacts", floor: floor}
}

func (f *FloorContacts) Name() string { return f.name }

func (f *FloorContacts) Observe(c *craft.Craft, _ float64) {
	for _, n := range c.Nodes {
		if n.Kind != craft.Fixed && n.Pos.Y >= f.floor {
			f.contacts++
		}
	}
}

func (f *FloorContacts) Value() float64 { return float64(f.contacts) }

func (f *FloorContacts) Reset() { f.contacts = 0 }
