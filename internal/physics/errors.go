package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates solver or run parameters out of range.
	ErrInvalidConfig = errors.New("physics: invalid configuration")

	// ErrUnstable indicates a node position diverged to NaN or Inf.
	ErrUnstable = errors.New("physics: simulation unstable (state diverged)")
)

// SimulationError wraps an error with the frame it occurred on.
type SimulationError struct {
	Step    int
	Time    float64
	Node    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) node %d: %v", e.Step, e.Time, e.Node, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
