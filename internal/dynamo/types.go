package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sum adds up the components. For compartmental models this is the total
// population.
func (s State) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// MaxAbsDiff returns the largest componentwise distance between s and other.
func (s State) MaxAbsDiff(other State) float64 {
	d := 0.0
	for i := range s {
		if i >= len(other) {
			break
		}
		d = math.Max(d, math.Abs(s[i]-other[i]))
	}
	return d
}

// System is an autonomous or time-dependent ODE right-hand side.
// Derive must not retain or modify x.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Integrator advances a state by one fixed step. Implementations return a
// freshly allocated state and never modify x.
type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Tolerance is the mixed error bound used by adaptive integrators: a step is
// accepted when each component's error estimate is within Abs + Rel*|x|
// in the RMS sense.
type Tolerance struct {
	Rel float64
	Abs float64
}

type AdaptiveIntegrator interface {
	Integrator
	// StepAdaptive attempts a single step of size dt. It returns the
	// candidate state, the suggested size for the next attempt and whether
	// the candidate met tol. A rejected candidate must be discarded.
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (State, float64, bool)
}

type Options struct {
	Tolerance   Tolerance
	InitialStep float64 // 0 picks one from the derivative at the first point
	MinStep     float64
	// MaxStepsPerInterval bounds accepted plus rejected steps between two
	// consecutive grid points.
	MaxStepsPerInterval int
	// Substeps is the number of equal steps per grid interval taken by
	// fixed-step integrators.
	Substeps int
}

func DefaultOptions() Options {
	return Options{
		Tolerance:           Tolerance{Rel: 1e-8, Abs: 1e-10},
		MinStep:             1e-12,
		MaxStepsPerInterval: 500,
		Substeps:            10,
	}
}

type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
}

type Result struct {
	Times  []float64
	States []State
	Stats  Stats
}
