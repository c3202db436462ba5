// Package epidemic implements the S/I/R/D compartmental model and the
// simulator that integrates it over a fixed time grid.
//
// The model tracks Susceptible, Infected, Recovered and Deceased
// compartments of a population N:
//
//	dS/dt = μN − βSI/N − μS + εI
//	dI/dt = βSI/N − (μ + γ + ε)I
//	dR/dt = γI
//	dD/dt = ωI
//
// Deaths are added to D without being removed from I, and births enter S
// only, so the total is not conserved when ω or μ is positive. With μ = 0
// the sum S+I+R is constant.
//
// # Usage
//
//	sim := epidemic.DefaultSimulator()
//	tr, err := sim.Solve(epidemic.DefaultInitialState(), dynamo.Linspace(0, 100, 1000), 1.0, epidemic.DefaultParams())
//
// [Params] and [Trajectory] are values: a new parameter set replaces the old
// one and each solve returns a fresh trajectory.
package epidemic
