// Package dynamo provides core simulation primitives for systems of
// ordinary differential equations.
//
// The package defines the fundamental interfaces and types used by every
// model and integrator in episim:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator] and [AdaptiveIntegrator]: numerical steppers
//   - [Solve]: integrates a system across a fixed time grid
//
// # Example
//
//	grid := dynamo.Linspace(0, 100, 1000)
//	res, err := dynamo.Solve(ctx, sys, integrators.NewRK45(), x0, grid, dynamo.DefaultOptions())
//	if errors.Is(err, dynamo.ErrIntegration) {
//	    // keep showing the previous result
//	}
//
// # Errors
//
// Failures are reported through three sentinel kinds, [ErrInvalidModel],
// [ErrInvalidParameter] and [ErrIntegration], wrapped by [ModelError],
// [ParameterError] and [SimulationError] respectively. Use errors.Is to
// classify and errors.As to inspect the details.
//
// # Thread Safety
//
// Integrators keep per-instance scratch buffers and are NOT safe for
// concurrent use. [Solve] itself holds no package state; give each
// goroutine its own integrator.
package dynamo
