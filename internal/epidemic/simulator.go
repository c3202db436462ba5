package epidemic

import (
	"context"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/integrators"
)

// Simulator runs one solve per call. It holds only its method name and
// options, both fixed at construction, so one Simulator can serve any number
// of sequential or concurrent solves.
type Simulator struct {
	method string
	opts   dynamo.Options
}

func NewSimulator(method string, opts dynamo.Options) (*Simulator, error) {
	if _, err := integrators.New(method); err != nil {
		return nil, err
	}
	return &Simulator{method: method, opts: opts}, nil
}

// DefaultSimulator uses Dormand-Prince with the default tolerances.
func DefaultSimulator() *Simulator {
	return &Simulator{method: integrators.MethodRK45, opts: dynamo.DefaultOptions()}
}

func (s *Simulator) Method() string          { return s.method }
func (s *Simulator) Options() dynamo.Options { return s.opts }

// WithOptions returns a simulator using the same method and new options.
func (s *Simulator) WithOptions(opts dynamo.Options) *Simulator {
	return &Simulator{method: s.method, opts: opts}
}

// Solve integrates the model from initial across grid. The first state of
// the result equals initial exactly. Errors wrap dynamo.ErrInvalidModel,
// dynamo.ErrInvalidParameter or dynamo.ErrIntegration; no trajectory is
// returned with an error.
//
// Small negative I, R or D values produced by the integrator are returned
// as-is rather than clamped.
func (s *Simulator) Solve(initial State, grid []float64, n float64, p Params) (*Trajectory, error) {
	return s.SolveContext(context.Background(), initial, grid, n, p)
}

// SolveContext is Solve with cancellation checked between grid intervals.
func (s *Simulator) SolveContext(ctx context.Context, initial State, grid []float64, n float64, p Params) (*Trajectory, error) {
	model, err := NewModel(n, p)
	if err != nil {
		return nil, err
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if err := dynamo.ValidateGrid(grid); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	integ, err := integrators.New(s.method)
	if err != nil {
		return nil, err
	}

	res, err := dynamo.Solve(ctx, model, integ, initial.Vector(), grid, s.opts)
	if err != nil {
		return nil, err
	}

	states := make([]State, len(res.States))
	for i, v := range res.States {
		states[i] = State{S: v[0], I: v[1], R: v[2], D: v[3]}
	}
	states[0] = initial

	return &Trajectory{
		Times:  res.Times,
		States: states,
		Params: p,
		N:      n,
		Method: s.method,
		Stats:  res.Stats,
	}, nil
}
