package epidemic

import (
	"math"

	"github.com/san-kum/episim/internal/dynamo"
)

// Trajectory is the output of one solve: one State per grid point. It is
// never modified after Solve returns; accessors hand out copies.
type Trajectory struct {
	Times  []float64
	States []State
	Params Params
	N      float64
	Method string
	Stats  dynamo.Stats
}

func (t *Trajectory) Len() int { return len(t.States) }

func (t *Trajectory) At(i int) State { return t.States[i] }

func (t *Trajectory) Initial() State { return t.States[0] }

func (t *Trajectory) Final() State { return t.States[len(t.States)-1] }

// Series returns a copy of one compartment over time.
func (t *Trajectory) Series(c Compartment) []float64 {
	out := make([]float64, len(t.States))
	for i, s := range t.States {
		out[i] = s.Get(c)
	}
	return out
}

// Peak returns the index and value of the maximum of c.
func (t *Trajectory) Peak(c Compartment) (int, float64) {
	idx, best := 0, math.Inf(-1)
	for i, s := range t.States {
		if v := s.Get(c); v > best {
			idx, best = i, v
		}
	}
	return idx, best
}

// Trough returns the index and value of the minimum of c.
func (t *Trajectory) Trough(c Compartment) (int, float64) {
	idx, best := 0, math.Inf(1)
	for i, s := range t.States {
		if v := s.Get(c); v < best {
			idx, best = i, v
		}
	}
	return idx, best
}

// MaxDeviation is the largest componentwise difference between two
// trajectories sampled on the same grid. It returns +Inf when the lengths
// differ.
func (t *Trajectory) MaxDeviation(other *Trajectory) float64 {
	if len(t.States) != len(other.States) {
		return math.Inf(1)
	}
	d := 0.0
	for i := range t.States {
		d = math.Max(d, t.States[i].Vector().MaxAbsDiff(other.States[i].Vector()))
	}
	return d
}
