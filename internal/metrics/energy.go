package metrics

import (
	"math"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
)

// Energy averages the total mechanical energy of a craft with unit node
// mass. Velocity is recovered from Pos-Prev, so the run's dt is needed.
type Energy struct {
	name        string
	gravity     craft.Vec2
	floor       float64
	dt          float64
	samples     int
	totalEnergy float64
}

func NewEnergy(cfg physics.Config, dt float64) *Energy {
	return &Energy{
		name:    "energy",
		gravity: cfg.Gravity,
		floor:   cfg.Floor,
		dt:      dt,
	}
}

func (e *Energy) Name() string { return e.name }

// Measure returns the instantaneous energy of c. Fixed nodes carry none.
// Potential energy is zero on the floor.
func (e *Energy) Measure(c *craft.Craft) float64 {
	var total float64
	for _, n := range c.Nodes {
		if n.Kind == craft.Fixed {
			continue
		}
		v := n.Velocity()
		ke := 0.5 * v.LenSq() / (e.dt * e.dt)
		pe := -(e.gravity.X*n.Pos.X + e.gravity.Y*(n.Pos.Y-e.floor))
		total += ke + pe
	}
	return total
}

func (e *Energy) Observe(c *craft.Craft, _ float64) {
	e.totalEnergy += e.Measure(c)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation from the first
// observed energy.
type EnergyDrift struct {
	name          string
	energy        *Energy
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(cfg physics.Config, dt float64) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		energy: NewEnergy(cfg, dt),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(c *craft.Craft, _ float64) {
	energy := e.energy.Measure(c)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
