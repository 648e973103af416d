package editor

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/craftsim/internal/craft"
)

const (
	// DefaultSpringLength is the intrinsic rest length of a new spring.
	DefaultSpringLength = 100.0
	// DefaultPistonMin and DefaultPistonMax bound a new piston's stroke.
	DefaultPistonMin = 100.0
	DefaultPistonMax = 200.0
)

type Editor struct {
	c *craft.Craft
}

// New wraps c. A nil craft starts an empty one.
func New(c *craft.Craft) *Editor {
	if c == nil {
		c = craft.New()
	}
	return &Editor{c: c}
}

// Craft returns the edited craft.
func (e *Editor) Craft() *craft.Craft { return e.c }

// Reset replaces the edited craft with an empty one.
func (e *Editor) Reset() { e.c = craft.New() }

func (e *Editor) checkNode(i int) error {
	if i < 0 || i >= len(e.c.Nodes) {
		return fmt.Errorf("node %d: %w", i, craft.ErrNodeNotFound)
	}
	return nil
}

func (e *Editor) checkRod(i int) error {
	if i < 0 || i >= len(e.c.Rods) {
		return fmt.Errorf("rod %d: %w", i, craft.ErrRodNotFound)
	}
	return nil
}

// AddNode appends a node at rest and returns its index.
func (e *Editor) AddNode(pos craft.Vec2, kind craft.NodeKind) int {
	e.c.Nodes = append(e.c.Nodes, craft.Node{Pos: pos, Prev: pos, Kind: kind})
	return len(e.c.Nodes) - 1
}

// AddRod links nodes a and b. Solid and rope rods take the current
// endpoint distance as rest length; springs and pistons use their
// intrinsic defaults.
func (e *Editor) AddRod(a, b int, kind craft.RodKind) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%v: %w", kind, craft.ErrUnknownKind)
	}
	if kind == craft.Piston {
		return e.AddPiston(a, b, DefaultPistonMin, DefaultPistonMax)
	}
	if err := e.checkEndpoints(a, b); err != nil {
		return 0, err
	}

	rod := craft.Rod{A: a, B: b, Kind: kind}
	switch kind {
	case craft.Spring:
		rod.RestLength = DefaultSpringLength
	default:
		rod.RestLength = e.c.Distance(a, b)
	}
	e.c.Rods = append(e.c.Rods, rod)
	return len(e.c.Rods) - 1, nil
}

// AddPiston links a and b with a piston whose target length sweeps
// [min, max].
func (e *Editor) AddPiston(a, b int, min, max float64) (int, error) {
	if err := e.checkEndpoints(a, b); err != nil {
		return 0, err
	}
	if min > max {
		min, max = max, min
	}
	e.c.Rods = append(e.c.Rods, craft.Rod{
		A:          a,
		B:          b,
		Kind:       craft.Piston,
		RestLength: (min + max) / 2,
		MinLength:  min,
		MaxLength:  max,
	})
	return len(e.c.Rods) - 1, nil
}

func (e *Editor) checkEndpoints(a, b int) error {
	if err := e.checkNode(a); err != nil {
		return err
	}
	if err := e.checkNode(b); err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("node %d: %w", a, craft.ErrSelfLoop)
	}
	return nil
}

// MoveNode repositions node i with zero implied velocity.
func (e *Editor) MoveNode(i int, pos craft.Vec2) error {
	if err := e.checkNode(i); err != nil {
		return err
	}
	e.c.Nodes[i].Pos = pos
	e.c.Nodes[i].Prev = pos
	return nil
}

func (e *Editor) SetNodeKind(i int, kind craft.NodeKind) error {
	if err := e.checkNode(i); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("%v: %w", kind, craft.ErrUnknownKind)
	}
	e.c.Nodes[i].Kind = kind
	return nil
}

// SetRodKind changes the kind of rod i, applying the new kind's rest
// length rules as AddRod would.
func (e *Editor) SetRodKind(i int, kind craft.RodKind) error {
	if err := e.checkRod(i); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("%v: %w", kind, craft.ErrUnknownKind)
	}
	r := &e.c.Rods[i]
	r.Kind = kind
	r.MinLength, r.MaxLength = 0, 0
	switch kind {
	case craft.Spring:
		r.RestLength = DefaultSpringLength
	case craft.Piston:
		r.MinLength, r.MaxLength = DefaultPistonMin, DefaultPistonMax
		r.RestLength = (DefaultPistonMin + DefaultPistonMax) / 2
	default:
		r.RestLength = e.c.Distance(r.A, r.B)
	}
	return nil
}

// RemoveNode deletes node i and every rod touching it. Rods pointing
// past i shift down by one, so node order is preserved.
func (e *Editor) RemoveNode(i int) error {
	if err := e.checkNode(i); err != nil {
		return err
	}

	e.dropRodsTouching(i)
	e.c.Nodes = append(e.c.Nodes[:i], e.c.Nodes[i+1:]...)

	for k := range e.c.Rods {
		r := &e.c.Rods[k]
		if r.A > i {
			r.A--
		}
		if r.B > i {
			r.B--
		}
	}
	return nil
}

// RemoveNodes deletes a batch of nodes with swap-with-last compaction.
// The ids are validated up front, deduplicated and sorted, so every
// permutation of the same set yields the same craft.
func (e *Editor) RemoveNodes(ids []int) error {
	for _, id := range ids {
		if err := e.checkNode(id); err != nil {
			return err
		}
	}

	pending := uniqueSorted(ids)
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		last := len(e.c.Nodes) - 1

		e.dropRodsTouching(id)

		if id != last {
			e.c.Nodes[id] = e.c.Nodes[last]
			for k := range e.c.Rods {
				r := &e.c.Rods[k]
				if r.A == last {
					r.A = id
				}
				if r.B == last {
					r.B = id
				}
			}
			if redirect(pending, last, id) {
				sort.Ints(pending)
			}
		}
		e.c.Nodes = e.c.Nodes[:last]
	}
	return nil
}

// RemoveRod deletes rod i by moving the last rod into its slot.
func (e *Editor) RemoveRod(i int) error {
	if err := e.checkRod(i); err != nil {
		return err
	}
	last := len(e.c.Rods) - 1
	e.c.Rods[i] = e.c.Rods[last]
	e.c.Rods = e.c.Rods[:last]
	return nil
}

// RemoveRods deletes a batch of rods with the same swap-and-pop
// translation as RemoveNodes.
func (e *Editor) RemoveRods(ids []int) error {
	for _, id := range ids {
		if err := e.checkRod(id); err != nil {
			return err
		}
	}

	pending := uniqueSorted(ids)
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		last := len(e.c.Rods) - 1

		if id != last {
			e.c.Rods[id] = e.c.Rods[last]
			if redirect(pending, last, id) {
				sort.Ints(pending)
			}
		}
		e.c.Rods = e.c.Rods[:last]
	}
	return nil
}

func (e *Editor) dropRodsTouching(i int) {
	kept := e.c.Rods[:0]
	for _, r := range e.c.Rods {
		if !r.Touches(i) {
			kept = append(kept, r)
		}
	}
	e.c.Rods = kept
}

// redirect rewrites the pending entry equal to from, if any.
func redirect(pending []int, from, to int) bool {
	for j, p := range pending {
		if p == from {
			pending[j] = to
			return true
		}
	}
	return false
}

func uniqueSorted(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	sort.Ints(out)

	n := 0
	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}

// DeduplicateRods keeps the first rod for each unordered endpoint pair.
func (e *Editor) DeduplicateRods() {
	seen := make(map[[2]int]struct{}, len(e.c.Rods))
	kept := e.c.Rods[:0]
	for _, r := range e.c.Rods {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	e.c.Rods = kept
}

// squared turns a distance threshold into a squared limit. Nothing lies
// within a threshold that is not positive.
func squared(threshold float64) float64 {
	if !(threshold > 0) {
		return 0
	}
	return threshold * threshold
}

// DeduplicateNodes merges every node lying within threshold of an
// earlier survivor into that survivor. Rods are rewritten through the
// merge map; a rod whose endpoints merge into one node is dropped.
func (e *Editor) DeduplicateNodes(threshold float64) {
	limit := squared(threshold)
	mapping := make([]int, len(e.c.Nodes))
	unique := make([]craft.Node, 0, len(e.c.Nodes))

	for i, n := range e.c.Nodes {
		mapping[i] = -1
		for k, u := range unique {
			if u.Pos.DistSq(n.Pos) < limit {
				mapping[i] = k
				break
			}
		}
		if mapping[i] < 0 {
			mapping[i] = len(unique)
			unique = append(unique, n)
		}
	}
	e.c.Nodes = unique

	kept := e.c.Rods[:0]
	for _, r := range e.c.Rods {
		r.A, r.B = mapping[r.A], mapping[r.B]
		if r.A == r.B {
			continue
		}
		kept = append(kept, r)
	}
	e.c.Rods = kept
}

// NearestNode returns the node closest to pos. Ties go to the lowest
// index. ok is false when the craft has no nodes.
func (e *Editor) NearestNode(pos craft.Vec2) (int, bool) {
	return e.nearestNode(pos, math.Inf(1))
}

// NodeWithin is NearestNode restricted to nodes closer than threshold.
func (e *Editor) NodeWithin(pos craft.Vec2, threshold float64) (int, bool) {
	return e.nearestNode(pos, squared(threshold))
}

func (e *Editor) nearestNode(pos craft.Vec2, limit float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, n := range e.c.Nodes {
		d := n.Pos.DistSq(pos)
		if d < bestDist && d < limit {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// NearestRod returns the rod whose midpoint is closest to pos among
// rods with a midpoint closer than threshold.
func (e *Editor) NearestRod(pos craft.Vec2, threshold float64) (int, bool) {
	limit := squared(threshold)
	best, bestDist := -1, math.Inf(1)
	for i := range e.c.Rods {
		d := e.rodMidpoint(i).DistSq(pos)
		if d < limit && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// Midpoint averages the positions of the given nodes. It is the zero
// vector for no ids.
func (e *Editor) Midpoint(ids []int) (craft.Vec2, error) {
	for _, id := range ids {
		if err := e.checkNode(id); err != nil {
			return craft.Vec2{}, err
		}
	}
	return e.midpoint(ids), nil
}

func (e *Editor) midpoint(ids []int) craft.Vec2 {
	if len(ids) == 0 {
		return craft.Vec2{}
	}
	var sum craft.Vec2
	for _, id := range ids {
		sum = sum.Add(e.c.Nodes[id].Pos)
	}
	return sum.Scale(1 / float64(len(ids)))
}

// RodMidpoint returns the point halfway along rod i.
func (e *Editor) RodMidpoint(i int) (craft.Vec2, error) {
	if err := e.checkRod(i); err != nil {
		return craft.Vec2{}, err
	}
	return e.rodMidpoint(i), nil
}

func (e *Editor) rodMidpoint(i int) craft.Vec2 {
	r := e.c.Rods[i]
	return e.c.Nodes[r.A].Pos.Add(e.c.Nodes[r.B].Pos).Scale(0.5)
}
