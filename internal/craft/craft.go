package craft

import "fmt"

// Node is a point mass. Velocity is implicit: Pos - Prev.
type Node struct {
	Pos  Vec2     `json:"pos"`
	Prev Vec2     `json:"prev_pos"`
	Kind NodeKind `json:"kind"`
}

// Velocity returns the displacement covered during the last step.
func (n Node) Velocity() Vec2 { return n.Pos.Sub(n.Prev) }

// Rod links nodes A and B by index.
type Rod struct {
	A          int     `json:"node_a"`
	B          int     `json:"node_b"`
	RestLength float64 `json:"rest_length"`
	Kind       RodKind `json:"kind"`
	MinLength  float64 `json:"min_length,omitempty"`
	MaxLength  float64 `json:"max_length,omitempty"`
}

// Touches reports whether the rod references node i.
func (r Rod) Touches(i int) bool { return r.A == i || r.B == i }

// Key returns the unordered endpoint pair.
func (r Rod) Key() [2]int {
	if r.A < r.B {
		return [2]int{r.A, r.B}
	}
	return [2]int{r.B, r.A}
}

// Craft owns the node and rod collections. Mutation goes through the
// editor; the solver only moves nodes.
type Craft struct {
	Nodes []Node `json:"nodes"`
	Rods  []Rod  `json:"rods"`
}

func New() *Craft {
	return &Craft{
		Nodes: make([]Node, 0),
		Rods:  make([]Rod, 0),
	}
}

func (c *Craft) NodeCount() int { return len(c.Nodes) }
func (c *Craft) RodCount() int  { return len(c.Rods) }

// Distance returns the Euclidean distance between nodes a and b.
// Both indices must be valid.
func (c *Craft) Distance(a, b int) float64 {
	return c.Nodes[a].Pos.Dist(c.Nodes[b].Pos)
}

// RodLength returns the current length of rod i.
func (c *Craft) RodLength(i int) float64 {
	r := c.Rods[i]
	return c.Distance(r.A, r.B)
}

// Clone returns a deep copy.
func (c *Craft) Clone() *Craft {
	out := &Craft{
		Nodes: make([]Node, len(c.Nodes)),
		Rods:  make([]Rod, len(c.Rods)),
	}
	copy(out.Nodes, c.Nodes)
	copy(out.Rods, c.Rods)
	return out
}

// Equal compares node and rod collections field by field.
func (c *Craft) Equal(o *Craft) bool {
	if len(c.Nodes) != len(o.Nodes) || len(c.Rods) != len(o.Rods) {
		return false
	}
	for i := range c.Nodes {
		if c.Nodes[i] != o.Nodes[i] {
			return false
		}
	}
	for i := range c.Rods {
		if c.Rods[i] != o.Rods[i] {
			return false
		}
	}
	return true
}

// Validate checks referential integrity: every rod endpoint is a live
// node and no rod links a node to itself.
func (c *Craft) Validate() error {
	n := len(c.Nodes)
	for i, r := range c.Rods {
		if r.A < 0 || r.A >= n {
			return fmt.Errorf("rod %d: endpoint a=%d: %w", i, r.A, ErrNodeNotFound)
		}
		if r.B < 0 || r.B >= n {
			return fmt.Errorf("rod %d: endpoint b=%d: %w", i, r.B, ErrNodeNotFound)
		}
		if r.A == r.B {
			return fmt.Errorf("rod %d: %w", i, ErrSelfLoop)
		}
	}
	return nil
}

// Bounds returns the axis-aligned box holding every node. ok is false
// for an empty craft.
func (c *Craft) Bounds() (min, max Vec2, ok bool) {
	if len(c.Nodes) == 0 {
		return Vec2{}, Vec2{}, false
	}
	min, max = c.Nodes[0].Pos, c.Nodes[0].Pos
	for _, n := range c.Nodes[1:] {
		if n.Pos.X < min.X {
			min.X = n.Pos.X
		}
		if n.Pos.Y < min.Y {
			min.Y = n.Pos.Y
		}
		if n.Pos.X > max.X {
			max.X = n.Pos.X
		}
		if n.Pos.Y > max.Y {
			max.Y = n.Pos.Y
		}
	}
	return min, max, true
}
