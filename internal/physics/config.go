package physics

import (
	"fmt"

	"github.com/san-kum/craftsim/internal/craft"
)

// Config holds the world constants of a solver.
type Config struct {
	Gravity         craft.Vec2 `yaml:"gravity" json:"gravity"`
	Floor           float64    `yaml:"floor" json:"floor"`
	Restitution     float64    `yaml:"restitution" json:"restitution"`
	Iterations      int        `yaml:"iterations" json:"iterations"`
	SpringStiffness float64    `yaml:"spring_stiffness" json:"spring_stiffness"`
	PistonFrequency float64    `yaml:"piston_frequency" json:"piston_frequency"`
}

// DefaultConfig matches a 60 Hz screen-space world where y grows downward.
func DefaultConfig() Config {
	return Config{
		Gravity:         craft.V(0, 500),
		Floor:           600,
		Restitution:     0.3,
		Iterations:      5,
		SpringStiffness: 0.2,
		PistonFrequency: 1,
	}
}

func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in [0,1], got %g", ErrInvalidConfig, c.Restitution)
	}
	if c.SpringStiffness < 0 {
		return fmt.Errorf("%w: spring stiffness must be non-negative, got %g", ErrInvalidConfig, c.SpringStiffness)
	}
	if !c.Gravity.IsFinite() {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidConfig)
	}
	return nil
}
