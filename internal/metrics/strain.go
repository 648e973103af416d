package metrics

import (
	"math"

	"github.com/san-kum/craftsim/internal/craft"
)

// Strain reports the worst relative length error of any rod over a run.
// Pistons are skipped since their target moves, and slack ropes carry no
// strain.
type Strain struct {
	name string
	max  float64
}

func NewStrain() *Strain {
	return &Strain{name: "max_strain"}
}

func (s *Strain) Name() string { return s.name }

func (s *Strain) Observe(c *craft.Craft, _ float64) {
	for i, r := range c.Rods {
		if r.Kind == craft.Piston || r.RestLength == 0 {
			continue
		}
		dev := c.RodLength(i) - r.RestLength
		if r.Kind == craft.Rope && dev < 0 {
			continue
		}
		s.max = math.Max(s.max, math.Abs(dev)/r.RestLength)
	}
}

func (s *Strain) Value() float64 { return s.max }

func (s *Strain) Reset() { s.max = 0 }
