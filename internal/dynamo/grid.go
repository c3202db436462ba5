package dynamo

import (
	"fmt"
	"math"
)

// Linspace returns n evenly spaced points over [start, stop]. The last point
// is exactly stop. n < 2 yields nil.
func Linspace(start, stop float64, n int) []float64 {
	if n < 2 {
		return nil
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// ValidateGrid checks that grid can be used as a sampling grid: at least two
// finite points, strictly increasing.
func ValidateGrid(grid []float64) error {
	if len(grid) < 2 {
		return &ModelError{Field: "time grid", Reason: fmt.Sprintf("need at least 2 points, got %d", len(grid))}
	}
	for i, t := range grid {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &ModelError{Field: "time grid", Reason: fmt.Sprintf("point %d is not finite", i)}
		}
		if i > 0 && t <= grid[i-1] {
			return &ModelError{Field: "time grid", Reason: fmt.Sprintf("not strictly increasing at index %d", i)}
		}
	}
	return nil
}
