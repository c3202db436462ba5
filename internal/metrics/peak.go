package metrics

import (
	"math"

	"github.com/san-kum/episim/internal/epidemic"
)

type PeakInfected struct {
	name string
	peak float64
}

func NewPeakInfected() *PeakInfected {
	return &PeakInfected{name: "peak_infected", peak: math.Inf(-1)}
}

func (p *PeakInfected) Name() string { return p.name }

func (p *PeakInfected) Observe(s epidemic.State, t float64) {
	p.peak = math.Max(p.peak, s.I)
}

func (p *PeakInfected) Value() float64 {
	if math.IsInf(p.peak, -1) {
		return 0
	}
	return p.peak
}

func (p *PeakInfected) Reset() { p.peak = math.Inf(-1) }

// PeakTime is the first time at which I reaches its maximum.
type PeakTime struct {
	name string
	peak float64
	at   float64
}

func NewPeakTime() *PeakTime {
	return &PeakTime{name: "peak_time", peak: math.Inf(-1)}
}

func (p *PeakTime) Name() string { return p.name }

func (p *PeakTime) Observe(s epidemic.State, t float64) {
	if s.I > p.peak {
		p.peak, p.at = s.I, t
	}
}

func (p *PeakTime) Value() float64 { return p.at }

func (p *PeakTime) Reset() {
	p.peak = math.Inf(-1)
	p.at = 0
}
