package dynamo

import (
	"errors"
	"fmt"
)

// Error kinds reported to callers. Every error returned by Solve wraps
// exactly one of these (or a context error).
var (
	// ErrInvalidModel indicates structurally invalid inputs: bad population,
	// wrong state dimension, or a malformed time grid.
	ErrInvalidModel = errors.New("dynamo: invalid model")

	// ErrInvalidParameter indicates a rate parameter outside its physical domain.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrIntegration indicates the integrator could not produce a trajectory.
	ErrIntegration = errors.New("dynamo: integration failed")
)

// Causes carried alongside ErrIntegration.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget for one grid interval ran out.
	ErrMaxSteps = errors.New("dynamo: step limit exceeded")
)

// ErrInvalidOptions indicates solver options that cannot drive an integration.
// It is a kind of ErrInvalidModel.
var ErrInvalidOptions = fmt.Errorf("%w: solver options", ErrInvalidModel)

// ModelError describes a structurally invalid input.
type ModelError struct {
	Field  string
	Reason string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidModel, e.Field, e.Reason)
}

func (e *ModelError) Unwrap() error { return ErrInvalidModel }

// ParameterError describes a rate parameter outside its domain.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%g: %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// SimulationError wraps an integration failure with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() []error {
	return []error{ErrIntegration, e.Wrapped}
}
