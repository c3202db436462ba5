package metrics

import (
	"github.com/san-kum/episim/internal/epidemic"
)

// Metric folds a trajectory, one state at a time, into a single number.
type Metric interface {
	Name() string
	Observe(s epidemic.State, t float64)
	Value() float64
	Reset()
}

// Default returns the summary metrics shown after every solve.
func Default(n float64) []Metric {
	return []Metric{
		NewPeakInfected(),
		NewPeakTime(),
		NewFinalMortality(),
		NewAttackRate(),
		NewMassDrift(n),
	}
}

// Evaluate resets each metric, feeds it the whole trajectory and returns
// the values keyed by metric name.
func Evaluate(tr *epidemic.Trajectory, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i, s := range tr.States {
		for _, m := range ms {
			m.Observe(s, tr.Times[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
