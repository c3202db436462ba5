// Package viz renders epidemic trajectories in the terminal.
//
// [App] is a Bubble Tea program with three sliders (β, γ, μ). Every slider
// change starts a new solve through a [session.Session]; results that arrive
// after a newer request are dropped. The four compartments are drawn with
// asciigraph by [Chart].
//
// # Key Bindings
//
//	j/k, up/down    - Select slider
//	h/l, left/right - Adjust by 0.005
//	H/L, shift+←/→  - Adjust by 0.001
//	r               - Reset to startup rates
//	t               - Cycle color themes
//	q               - Quit
package viz
