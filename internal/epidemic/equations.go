package epidemic

import (
	"fmt"
	"math"

	"github.com/san-kum/episim/internal/dynamo"
)

// Derivatives returns (dS/dt, dI/dt, dR/dt, dD/dt) for state s in a
// population of size n. It has no side effects.
func Derivatives(s State, n float64, p Params) (State, error) {
	if err := validatePopulation(n); err != nil {
		return State{}, err
	}
	return derive(s.S, s.I, n, p), nil
}

func derive(s, i, n float64, p Params) State {
	infection := p.Beta * s * i / n
	return State{
		S: p.Mu*n - infection - p.Mu*s + p.Epsilon*i,
		I: infection - (p.Mu+p.Gamma+p.Epsilon)*i,
		R: p.Gamma * i,
		D: p.Omega * i,
	}
}

func validatePopulation(n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return &dynamo.ModelError{Field: "population", Reason: "must be finite"}
	}
	if n <= 0 {
		return &dynamo.ModelError{Field: "population", Reason: fmt.Sprintf("must be positive, got %g", n)}
	}
	return nil
}

// Model binds a population and a parameter set into a dynamo.System.
type Model struct {
	n      float64
	params Params
}

func NewModel(n float64, p Params) (*Model, error) {
	if err := validatePopulation(n); err != nil {
		return nil, err
	}
	return &Model{n: n, params: p}, nil
}

func (m *Model) StateDim() int { return 4 }

func (m *Model) Derive(x dynamo.State, _ float64) dynamo.State {
	d := derive(x[0], x[1], m.n, m.params)
	return dynamo.State{d.S, d.I, d.R, d.D}
}

func (m *Model) Population() float64 { return m.n }
func (m *Model) Params() Params      { return m.params }
