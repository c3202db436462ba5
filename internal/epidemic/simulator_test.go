package epidemic

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/integrators"
)

func TestSimulatorSolve(t *testing.T) {
	sim := DefaultSimulator()
	grid := dynamo.Linspace(0, 100, 100)

	tr, err := sim.Solve(DefaultInitialState(), grid, 1.0, DefaultParams())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if tr.Len() != len(grid) {
		t.Errorf("expected %d states, got %d", len(grid), tr.Len())
	}
	if tr.Initial() != DefaultInitialState() {
		t.Errorf("first state = %+v, want initial state exactly", tr.Initial())
	}
	if tr.Method != integrators.MethodRK45 {
		t.Errorf("expected method rk45, got %s", tr.Method)
	}
	if tr.Stats.Accepted == 0 || tr.Stats.Evaluations == 0 {
		t.Errorf("expected solver stats, got %+v", tr.Stats)
	}
	if diff := cmp.Diff(grid, tr.Times); diff != "" {
		t.Errorf("times differ from grid (-want +got):\n%s", diff)
	}
}

func TestSimulatorErrorPrecedence(t *testing.T) {
	sim := DefaultSimulator()
	grid := dynamo.Linspace(0, 10, 10)
	bad := DefaultParams()
	bad.Beta = -1

	tests := []struct {
		name    string
		initial State
		grid    []float64
		n       float64
		params  Params
		want    error
	}{
		{"zero population", DefaultInitialState(), grid, 0, DefaultParams(), dynamo.ErrInvalidModel},
		{"negative population", DefaultInitialState(), grid, -1, DefaultParams(), dynamo.ErrInvalidModel},
		{"model before params", DefaultInitialState(), grid, 0, bad, dynamo.ErrInvalidModel},
		{"negative state", State{S: 1, I: -0.01}, grid, 1, DefaultParams(), dynamo.ErrInvalidModel},
		{"empty grid", DefaultInitialState(), nil, 1, DefaultParams(), dynamo.ErrInvalidModel},
		{"one point grid", DefaultInitialState(), []float64{0}, 1, DefaultParams(), dynamo.ErrInvalidModel},
		{"non-increasing grid", DefaultInitialState(), []float64{0, 1, 1}, 1, DefaultParams(), dynamo.ErrInvalidModel},
		{"negative rate", DefaultInitialState(), grid, 1, bad, dynamo.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := sim.Solve(tt.initial, tt.grid, tt.n, tt.params)
			if tr != nil {
				t.Error("expected nil trajectory on error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulatorIntegrationError(t *testing.T) {
	opts := dynamo.DefaultOptions()
	opts.MaxStepsPerInterval = 3
	sim, err := NewSimulator(integrators.MethodRK45, opts)
	if err != nil {
		t.Fatalf("new simulator failed: %v", err)
	}

	tr, err := sim.Solve(DefaultInitialState(), []float64{0, 100}, 1.0, DefaultParams())
	if tr != nil {
		t.Error("expected nil trajectory on integration failure")
	}
	if !errors.Is(err, dynamo.ErrIntegration) {
		t.Fatalf("expected ErrIntegration, got %v", err)
	}
	var se *dynamo.SimulationError
	if !errors.As(err, &se) {
		t.Fatalf("expected *dynamo.SimulationError, got %T", err)
	}
	if !errors.Is(err, dynamo.ErrMaxSteps) {
		t.Errorf("expected step budget cause, got %v", se.Wrapped)
	}
}

func TestSimulatorBadOptionsIsModelError(t *testing.T) {
	opts := dynamo.DefaultOptions()
	opts.Tolerance = dynamo.Tolerance{}
	sim := DefaultSimulator().WithOptions(opts)

	tr, err := sim.Solve(DefaultInitialState(), dynamo.Linspace(0, 10, 10), 1.0, DefaultParams())
	if tr != nil {
		t.Error("expected nil trajectory on error")
	}
	if !errors.Is(err, dynamo.ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions cause, got %v", err)
	}
}

func TestNewSimulatorUnknownMethod(t *testing.T) {
	if _, err := NewSimulator("lsoda", dynamo.DefaultOptions()); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestSimulatorMethodsAgree(t *testing.T) {
	grid := dynamo.Linspace(0, 100, 1000)
	ref, err := DefaultSimulator().Solve(DefaultInitialState(), grid, 1.0, DefaultParams())
	if err != nil {
		t.Fatalf("rk45 solve failed: %v", err)
	}

	rk4, err := NewSimulator(integrators.MethodRK4, dynamo.DefaultOptions())
	if err != nil {
		t.Fatalf("new simulator failed: %v", err)
	}
	got, err := rk4.Solve(DefaultInitialState(), grid, 1.0, DefaultParams())
	if err != nil {
		t.Fatalf("rk4 solve failed: %v", err)
	}

	if d := ref.MaxDeviation(got); d > 1e-6 {
		t.Errorf("rk4 and rk45 disagree by %g", d)
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	sim := DefaultSimulator()
	grid := dynamo.Linspace(0, 100, 500)

	a, err := sim.Solve(DefaultInitialState(), grid, 1.0, DefaultParams())
	if err != nil {
		t.Fatalf("first solve failed: %v", err)
	}
	b, err := sim.Solve(DefaultInitialState(), grid, 1.0, DefaultParams())
	if err != nil {
		t.Fatalf("second solve failed: %v", err)
	}

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated solves differ (-first +second):\n%s", diff)
	}
	if &a.States[0] == &b.States[0] {
		t.Error("solves share their state slice")
	}
}

func TestSimulatorCountsScaleWithFractions(t *testing.T) {
	sim := DefaultSimulator()
	grid := dynamo.Linspace(0, 50, 51)

	frac, err := sim.Solve(State{S: 0.99, I: 0.01}, grid, 1, DefaultParams())
	if err != nil {
		t.Fatalf("fraction solve failed: %v", err)
	}
	counts, err := sim.Solve(State{S: 990000, I: 10000}, grid, 1e6, DefaultParams())
	if err != nil {
		t.Fatalf("count solve failed: %v", err)
	}

	scaled := make([]State, counts.Len())
	for i, s := range counts.States {
		scaled[i] = State{S: s.S / 1e6, I: s.I / 1e6, R: s.R / 1e6, D: s.D / 1e6}
	}
	if diff := cmp.Diff(frac.States, scaled, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("count trajectory is not a scaled fraction trajectory:\n%s", diff)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := DefaultSimulator().SolveContext(ctx, DefaultInitialState(), dynamo.Linspace(0, 100, 100), 1, DefaultParams())
	if tr != nil || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled solve, got %v, %v", tr, err)
	}
}

func TestTrajectoryAccessors(t *testing.T) {
	tr, err := DefaultSimulator().Solve(DefaultInitialState(), dynamo.Linspace(0, 100, 100), 1, DefaultParams())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	series := tr.Series(Infected)
	series[0] = 42
	if tr.At(0).I == 42 {
		t.Error("Series should return a copy")
	}

	idx, peak := tr.Peak(Infected)
	if peak != tr.At(idx).I {
		t.Errorf("Peak value %v does not match state at %d", peak, idx)
	}
	tIdx, trough := tr.Trough(Susceptible)
	if trough != tr.At(tIdx).S {
		t.Errorf("Trough value %v does not match state at %d", trough, tIdx)
	}
	if tr.MaxDeviation(tr) != 0 {
		t.Error("trajectory should not deviate from itself")
	}
	short := &Trajectory{States: tr.States[:2]}
	if !math.IsInf(tr.MaxDeviation(short), 1) {
		t.Error("length mismatch should give +Inf deviation")
	}
}
