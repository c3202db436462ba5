// Package analysis studies how simulation outcomes respond to a parameter.
//
// [Sweep] solves the same scenario once per value of a single rate and
// records summary metrics for each run:
//
//	sw := analysis.Sweep{Sim: sim, Initial: s0, Grid: grid, N: 1, Base: p}
//	points, err := sw.Run(ctx, "beta", 0.05, 0.5, 20)
//
// Runs are independent and are solved concurrently.
package analysis
