package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidTimestep indicates a zero, negative or non-finite dt.
	ErrInvalidTimestep = errors.New("dynamo: timestep must be positive and finite")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidState indicates a state with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrUnknownComponent indicates a registry lookup for an unknown name.
	ErrUnknownComponent = errors.New("dynamo: unknown component")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ValidateTimestep rejects dt values the fixed-step pipeline cannot use.
func ValidateTimestep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidTimestep, dt)
	}
	return nil
}
