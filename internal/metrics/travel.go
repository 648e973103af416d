package metrics

import "github.com/san-kum/craftsim/internal/craft"

// Travel is the horizontal distance the craft's centroid has moved since
// the first observation. Walkers report positive values when heading
// right.
type Travel struct {
	name    string
	start   float64
	current float64
	samples int
}

func NewTravel() *Travel {
	return &Travel{name: "travel"}
}

func (t *Travel) Name() string { return t.name }

func (t *Travel) Observe(c *craft.Craft, _ float64) {
	if len(c.Nodes) == 0 {
		return
	}
	var sum float64
	for _, n := range c.Nodes {
		sum += n.Pos.X
	}
	x := sum / float64(len(c.Nodes))
	if t.samples == 0 {
		t.start = x
	}
	t.current = x
	t.samples++
}

func (t *Travel) Value() float64 {
	return t.current - t.start
}

func (t *Travel) Reset() {
	t.start = 0
	t.current = 0
	t.samples = 0
}
