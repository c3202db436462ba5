package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/episim/internal/dynamo"
)

const (
	MethodEuler = "euler"
	MethodRK4   = "rk4"
	MethodRK45  = "rk45"
)

var registry = map[string]func() dynamo.Integrator{
	MethodEuler: func() dynamo.Integrator { return NewEuler() },
	MethodRK4:   func() dynamo.Integrator { return NewRK4() },
	MethodRK45:  func() dynamo.Integrator { return NewRK45() },
}

// New returns a fresh integrator for name. Integrators hold scratch buffers,
// so each solve should get its own.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAdaptive reports whether the named method controls its own step size.
func IsAdaptive(name string) bool {
	fn, ok := registry[name]
	if !ok {
		return false
	}
	_, adaptive := fn().(dynamo.AdaptiveIntegrator)
	return adaptive
}
