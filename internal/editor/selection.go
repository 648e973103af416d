package editor

import (
	"math"

	"github.com/san-kum/craftsim/internal/craft"
)

// PointKind says what a picked point refers to.
type PointKind uint8

const (
	// PointNew is a free position with no node behind it yet.
	PointNew PointKind = iota
	// PointNode refers to an existing node.
	PointNode
	// PointRod refers to the midpoint of an existing rod.
	PointRod
	// PointRef refers to an earlier entry of the same selection.
	PointRef
)

type Point struct {
	Kind  PointKind
	Pos   craft.Vec2
	Index int
}

// Selection is an ordered list of picked points awaiting placement.
type Selection struct {
	Points []Point
}

func (s *Selection) Len() int { return len(s.Points) }

func (s *Selection) Clear() { s.Points = s.Points[:0] }

// Pick records the closest thing to pos: a node, a rod midpoint, or an
// already picked point, each considered only within threshold. With no
// candidate a free point is recorded.
func (s *Selection) Pick(e *Editor, pos craft.Vec2, threshold float64) Point {
	limit := squared(threshold)
	best := Point{Kind: PointNew, Pos: pos}
	bestDist := math.Inf(1)

	consider := func(p Point, at craft.Vec2) {
		if d := at.DistSq(pos); d < limit && d < bestDist {
			best, bestDist = p, d
		}
	}

	if i, ok := e.NodeWithin(pos, threshold); ok {
		consider(Point{Kind: PointNode, Index: i}, e.c.Nodes[i].Pos)
	}
	if i, ok := e.NearestRod(pos, threshold); ok {
		consider(Point{Kind: PointRod, Index: i}, e.rodMidpoint(i))
	}
	for k := range s.Points {
		consider(Point{Kind: PointRef, Index: k}, s.Resolve(e, s.Points[k]))
	}

	s.Points = append(s.Points, best)
	return best
}

// Resolve returns the world position of p.
func (s *Selection) Resolve(e *Editor, p Point) craft.Vec2 {
	switch p.Kind {
	case PointNode:
		if e.checkNode(p.Index) == nil {
			return e.c.Nodes[p.Index].Pos
		}
	case PointRod:
		if e.checkRod(p.Index) == nil {
			return e.rodMidpoint(p.Index)
		}
	case PointRef:
		if p.Index >= 0 && p.Index < len(s.Points) {
			return s.Resolve(e, s.Points[p.Index])
		}
	default:
		return p.Pos
	}
	return craft.Vec2{}
}

// PlaceNodes adds a node at every picked point except references and
// clears the selection. It returns the new node indices.
func (s *Selection) PlaceNodes(e *Editor, kind craft.NodeKind) []int {
	added := make([]int, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Kind == PointRef {
			continue
		}
		added = append(added, e.AddNode(s.Resolve(e, p), kind))
	}
	s.Clear()
	return added
}

// PlaceRods chains consecutive picked points with rods of the given
// kind, creating nodes for free points and rod midpoints. The selection
// is cleared afterwards. It returns the new rod indices.
func (s *Selection) PlaceRods(e *Editor, kind craft.RodKind) ([]int, error) {
	defer s.Clear()

	added := make([]int, 0, len(s.Points))
	for i := 0; i+1 < len(s.Points); i++ {
		a := s.ensureNode(e, i)
		b := s.ensureNode(e, i+1)
		if a == b {
			continue
		}
		id, err := e.AddRod(a, b, kind)
		if err != nil {
			return added, err
		}
		added = append(added, id)
	}
	return added, nil
}

func (s *Selection) ensureNode(e *Editor, k int) int {
	p := s.Points[k]
	switch p.Kind {
	case PointNode:
		return p.Index
	case PointRef:
		return s.ensureNode(e, p.Index)
	default:
		id := e.AddNode(s.Resolve(e, p), craft.Joint)
		s.Points[k] = Point{Kind: PointNode, Index: id}
		return id
	}
}
