package epidemic

import (
	"math"

	"github.com/san-kum/episim/internal/dynamo"
)

// OmegaBaseline is the combined removal rate from which the default
// mortality rate is derived: ω = OmegaBaseline − γ.
const OmegaBaseline = 0.1

// Params is one immutable set of rates. Replace it, never modify it while a
// solve is using it.
type Params struct {
	Beta    float64 `yaml:"beta" json:"beta"`       // transmission rate
	Gamma   float64 `yaml:"gamma" json:"gamma"`     // recovery rate
	Omega   float64 `yaml:"omega" json:"omega"`     // mortality rate
	Epsilon float64 `yaml:"epsilon" json:"epsilon"` // I→S feedback (latency) rate
	Mu      float64 `yaml:"mu" json:"mu"`           // population growth rate
}

func DefaultParams() Params {
	gamma := 0.07
	return Params{
		Beta:    0.22,
		Gamma:   gamma,
		Omega:   OmegaBaseline - gamma,
		Epsilon: 0.01,
		Mu:      0.01,
	}
}

// Validate rejects rates that are negative or not finite. Interactive ranges
// are the caller's business; see SliderRange.
func (p Params) Validate() error {
	for _, f := range p.fields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &dynamo.ParameterError{Name: f.name, Value: f.value, Reason: "must be finite"}
		}
		if f.value < 0 {
			return &dynamo.ParameterError{Name: f.name, Value: f.value, Reason: "must not be negative"}
		}
	}
	return nil
}

// R0 is the basic reproduction number β/(μ+γ+ε). It is +Inf when no
// removal term is present.
func (p Params) R0() float64 {
	out := p.Mu + p.Gamma + p.Epsilon
	if out == 0 {
		return math.Inf(1)
	}
	return p.Beta / out
}

func (p Params) Get(name string) (float64, bool) {
	for _, f := range p.fields() {
		if f.name == name {
			return f.value, true
		}
	}
	return 0, false
}

// With returns a copy of p with the named rate replaced.
func (p Params) With(name string, v float64) (Params, error) {
	switch name {
	case "beta":
		p.Beta = v
	case "gamma":
		p.Gamma = v
	case "omega":
		p.Omega = v
	case "epsilon":
		p.Epsilon = v
	case "mu":
		p.Mu = v
	default:
		return p, &dynamo.ParameterError{Name: name, Value: v, Reason: "unknown parameter"}
	}
	return p, nil
}

type field struct {
	name  string
	value float64
}

func (p Params) fields() []field {
	return []field{
		{"beta", p.Beta},
		{"gamma", p.Gamma},
		{"omega", p.Omega},
		{"epsilon", p.Epsilon},
		{"mu", p.Mu},
	}
}

// ParamNames lists the rate names accepted by Get and With.
func ParamNames() []string {
	return []string{"beta", "gamma", "omega", "epsilon", "mu"}
}

// Range is a closed interval of allowed slider values.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

func (r Range) Clamp(v float64) float64 { return math.Max(r.Min, math.Min(r.Max, v)) }

// SliderRange is the interactive range for β, γ and μ. The simulator does
// not enforce it.
var SliderRange = Range{Min: 0.001, Max: 0.5}
