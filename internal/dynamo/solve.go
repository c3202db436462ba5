package dynamo

import (
	"context"
	"fmt"
	"math"
)

// Solve integrates dyn from x0 across grid and returns one state per grid
// point. The first state is a copy of x0. Adaptive integrators step freely
// inside each interval and are clipped to land on every grid point; other
// integrators take opts.Substeps equal steps per interval.
//
// On error no partial result is returned.
func Solve(ctx context.Context, dyn System, integ Integrator, x0 State, grid []float64, opts Options) (*Result, error) {
	if err := ValidateGrid(grid); err != nil {
		return nil, err
	}
	if len(x0) != dyn.StateDim() {
		return nil, &ModelError{Field: "state", Reason: fmt.Sprintf("want %d components, got %d", dyn.StateDim(), len(x0))}
	}
	if !x0.IsValid() {
		return nil, &ModelError{Field: "state", Reason: "initial state is not finite"}
	}

	adaptive, isAdaptive := integ.(AdaptiveIntegrator)
	if err := validateOptions(opts, isAdaptive); err != nil {
		return nil, err
	}

	counter := &countingSystem{System: dyn}
	result := &Result{
		Times:  append([]float64(nil), grid...),
		States: make([]State, len(grid)),
	}
	result.States[0] = x0.Clone()

	x := x0.Clone()
	h := opts.InitialStep
	if isAdaptive && h <= 0 {
		h = initialStep(counter, x, grid, opts.Tolerance)
	}

	for i := 1; i < len(grid); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var err error
		if isAdaptive {
			x, h, err = stepInterval(counter, adaptive, x, grid[i-1], grid[i], h, opts, &result.Stats)
		} else {
			x, err = fixedInterval(counter, integ, x, grid[i-1], grid[i], opts.Substeps, &result.Stats)
		}
		if err != nil {
			return nil, err
		}
		result.States[i] = x.Clone()
	}

	result.Stats.Evaluations = counter.calls
	return result, nil
}

func validateOptions(opts Options, adaptive bool) error {
	if adaptive {
		if opts.Tolerance.Rel < 0 || opts.Tolerance.Abs < 0 || opts.Tolerance.Rel+opts.Tolerance.Abs <= 0 {
			return fmt.Errorf("%w: tolerance must be positive, got rel=%g abs=%g", ErrInvalidOptions, opts.Tolerance.Rel, opts.Tolerance.Abs)
		}
		if opts.MinStep < 0 {
			return fmt.Errorf("%w: min step must not be negative", ErrInvalidOptions)
		}
		if opts.MaxStepsPerInterval <= 0 {
			return fmt.Errorf("%w: max steps per interval must be positive", ErrInvalidOptions)
		}
		return nil
	}
	if opts.Substeps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", ErrInvalidOptions, opts.Substeps)
	}
	return nil
}

// stepInterval advances x from t0 to exactly t1 and returns the step size to
// try first on the next interval.
func stepInterval(dyn System, integ AdaptiveIntegrator, x State, t0, t1, h float64, opts Options, stats *Stats) (State, float64, error) {
	t := t0
	for attempts := 0; t < t1; attempts++ {
		if attempts >= opts.MaxStepsPerInterval {
			return nil, 0, &SimulationError{Step: stats.Accepted, Time: t, State: x.Clone(), Wrapped: ErrMaxSteps}
		}

		step, last := h, false
		if remaining := t1 - t; step >= remaining || remaining-step <= 1e-12*math.Abs(t1) {
			step, last = remaining, true
		}

		xNew, hNext, ok := integ.StepAdaptive(dyn, x, t, step, opts.Tolerance)
		if !ok {
			stats.Rejected++
			if hNext < opts.MinStep {
				return nil, 0, &SimulationError{Step: stats.Accepted, Time: t, State: x.Clone(), Wrapped: ErrStepTooSmall}
			}
			h = hNext
			continue
		}
		if !xNew.IsValid() {
			return nil, 0, &SimulationError{Step: stats.Accepted, Time: t + step, State: xNew, Wrapped: ErrInvalidState}
		}

		stats.Accepted++
		x = xNew
		if last {
			t = t1
			// A clipped step says little about the natural step size; only let
			// it shrink h.
			h = math.Min(h, hNext)
		} else {
			t += step
			h = hNext
		}
	}
	return x, h, nil
}

func fixedInterval(dyn System, integ Integrator, x State, t0, t1 float64, substeps int, stats *Stats) (State, error) {
	dt := (t1 - t0) / float64(substeps)
	t := t0
	for k := 0; k < substeps; k++ {
		x = integ.Step(dyn, x, t, dt)
		t = t0 + float64(k+1)*dt
		if !x.IsValid() {
			return nil, &SimulationError{Step: stats.Accepted, Time: t, State: x, Wrapped: ErrInvalidState}
		}
		stats.Accepted++
	}
	return x, nil
}

// initialStep estimates a first step from the scale of the state and its
// derivative, capped by the first grid interval.
func initialStep(dyn System, x State, grid []float64, tol Tolerance) float64 {
	first := grid[1] - grid[0]
	f0 := dyn.Derive(x, grid[0])

	var d0, d1 float64
	for i := range x {
		sc := tol.Abs + tol.Rel*math.Abs(x[i])
		d0 += (x[i] / sc) * (x[i] / sc)
		d1 += (f0[i] / sc) * (f0[i] / sc)
	}
	d0 = math.Sqrt(d0 / float64(len(x)))
	d1 = math.Sqrt(d1 / float64(len(x)))

	h := 1e-6
	if d0 > 1e-5 && d1 > 1e-5 {
		h = 0.01 * d0 / d1
	}
	return math.Min(h, first)
}

type countingSystem struct {
	System
	calls int
}

func (c *countingSystem) Derive(x State, t float64) State {
	c.calls++
	return c.System.Derive(x, t)
}
