package epidemic

import (
	"fmt"
	"math"

	"github.com/san-kum/episim/internal/dynamo"
)

// Compartment indexes a State component.
type Compartment int

const (
	Susceptible Compartment = iota
	Infected
	Recovered
	Deceased
)

// Compartments lists all compartments in state-vector order.
var Compartments = []Compartment{Susceptible, Infected, Recovered, Deceased}

func (c Compartment) String() string {
	switch c {
	case Susceptible:
		return "Susceptible"
	case Infected:
		return "Infected"
	case Recovered:
		return "Recovered"
	case Deceased:
		return "Mortality"
	}
	return fmt.Sprintf("Compartment(%d)", int(c))
}

// Short is the one-letter column name.
func (c Compartment) Short() string {
	return [...]string{"S", "I", "R", "D"}[c]
}

// State holds the four compartment sizes, as fractions or counts of N.
type State struct {
	S float64 `yaml:"s" json:"s"`
	I float64 `yaml:"i" json:"i"`
	R float64 `yaml:"r" json:"r"`
	D float64 `yaml:"d" json:"d"`
}

func DefaultInitialState() State {
	return State{S: 0.99, I: 0.01}
}

func (s State) Total() float64 { return s.S + s.I + s.R + s.D }

func (s State) Get(c Compartment) float64 {
	switch c {
	case Susceptible:
		return s.S
	case Infected:
		return s.I
	case Recovered:
		return s.R
	case Deceased:
		return s.D
	}
	return math.NaN()
}

func (s State) Vector() dynamo.State {
	return dynamo.State{s.S, s.I, s.R, s.D}
}

// StateFromVector converts a 4-component vector into a State.
func StateFromVector(v dynamo.State) (State, error) {
	if len(v) != 4 {
		return State{}, &dynamo.ModelError{Field: "state", Reason: fmt.Sprintf("want 4 components, got %d", len(v))}
	}
	return State{S: v[0], I: v[1], R: v[2], D: v[3]}, nil
}

// Validate requires every compartment to be finite and non-negative.
func (s State) Validate() error {
	for _, c := range Compartments {
		v := s.Get(c)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &dynamo.ModelError{Field: "state", Reason: fmt.Sprintf("%s is not finite", c.Short())}
		}
		if v < 0 {
			return &dynamo.ModelError{Field: "state", Reason: fmt.Sprintf("%s=%g is negative", c.Short(), v)}
		}
	}
	return nil
}
