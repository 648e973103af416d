package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
)

// renormAt is the separation, in world units, at which the perturbed run
// is pulled back toward the reference.
const renormAt = 1.0

// LyapunovExponent estimates the largest Lyapunov exponent of c by
// nudging node horizontally and tracking how fast the two runs separate.
// A positive value indicates chaos. c is not modified.
func LyapunovExponent(c *craft.Craft, cfg physics.Config, node int, perturbation, dt float64, steps int) (float64, error) {
	if node < 0 || node >= c.NodeCount() {
		return 0, fmt.Errorf("node %d: %w", node, craft.ErrNodeNotFound)
	}
	if perturbation <= 0 || dt <= 0 || steps < 1 {
		return 0, fmt.Errorf("%w: perturbation, dt and steps must be positive", physics.ErrInvalidConfig)
	}

	ref := physics.New(c.Clone(), cfg)
	nudged := c.Clone()
	nudge := craft.V(perturbation, 0)
	nudged.Nodes[node].Pos = nudged.Nodes[node].Pos.Add(nudge)
	nudged.Nodes[node].Prev = nudged.Nodes[node].Prev.Add(nudge)
	pert := physics.New(nudged, cfg)

	d0 := perturbation
	sumLog := 0.0

	for i := 0; i < steps; i++ {
		ref.Step(dt)
		pert.Step(dt)

		sep := separation(ref.Craft(), pert.Craft())
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, fmt.Errorf("step %d: %w", i, physics.ErrUnstable)
		}
		if sep > renormAt || i == steps-1 {
			if sep > 0 {
				sumLog += math.Log(sep / d0)
			}
			renormalize(ref.Craft(), pert.Craft(), d0/sep)
		}
	}

	return sumLog / (float64(steps) * dt), nil
}

func separation(a, b *craft.Craft) float64 {
	var sum float64
	for i := range a.Nodes {
		sum += a.Nodes[i].Pos.DistSq(b.Nodes[i].Pos)
	}
	return math.Sqrt(sum)
}

// renormalize shrinks b's offset from a by scale, keeping the implied
// velocity offset in proportion.
func renormalize(a, b *craft.Craft, scale float64) {
	if math.IsInf(scale, 0) || math.IsNaN(scale) {
		return
	}
	for i := range b.Nodes {
		ra, rb := a.Nodes[i], &b.Nodes[i]
		rb.Pos = ra.Pos.Add(rb.Pos.Sub(ra.Pos).Scale(scale))
		rb.Prev = ra.Prev.Add(rb.Prev.Sub(ra.Prev).Scale(scale))
	}
}
