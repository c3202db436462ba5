package metrics

import (
	"math"

	"github.com/san-kum/episim/internal/epidemic"
)

// FinalMortality is D at the last observed state.
type FinalMortality struct {
	name string
	last float64
}

func NewFinalMortality() *FinalMortality {
	return &FinalMortality{name: "final_mortality"}
}

func (f *FinalMortality) Name() string                        { return f.name }
func (f *FinalMortality) Observe(s epidemic.State, t float64) { f.last = s.D }
func (f *FinalMortality) Value() float64                      { return f.last }
func (f *FinalMortality) Reset()                              { f.last = 0 }

// AttackRate is the largest fraction of the initial susceptibles that was
// depleted at any point: 1 − min(S)/S(0).
type AttackRate struct {
	name    string
	initial float64
	min     float64
	samples int
}

func NewAttackRate() *AttackRate {
	return &AttackRate{name: "attack_rate"}
}

func (a *AttackRate) Name() string { return a.name }

func (a *AttackRate) Observe(s epidemic.State, t float64) {
	if a.samples == 0 {
		a.initial, a.min = s.S, s.S
	}
	a.min = math.Min(a.min, s.S)
	a.samples++
}

func (a *AttackRate) Value() float64 {
	if a.samples == 0 || a.initial == 0 {
		return 0
	}
	return 1 - a.min/a.initial
}

func (a *AttackRate) Reset() {
	a.initial, a.min = 0, 0
	a.samples = 0
}
