package metrics

import (
	"math"

	"github.com/san-kum/episim/internal/epidemic"
)

// MassDrift is the largest |S+I+R+D − N| seen. The model only conserves
// the total when μ = 0 and ω = 0, so a non-zero value is not an error.
type MassDrift struct {
	name  string
	n     float64
	drift float64
}

func NewMassDrift(n float64) *MassDrift {
	return &MassDrift{name: "mass_drift", n: n}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(s epidemic.State, t float64) {
	m.drift = math.Max(m.drift, math.Abs(s.Total()-m.n))
}

func (m *MassDrift) Value() float64 { return m.drift }
func (m *MassDrift) Reset()         { m.drift = 0 }
