package config

import (
	"sort"

	"github.com/san-kum/episim/internal/epidemic"
)

type Preset struct {
	Description string
	Initial     epidemic.State
	Params      epidemic.Params
}

var Presets = map[string]Preset{
	"covid": {
		Description: "default outbreak: β=0.22, γ=0.07, ω=0.03",
		Initial:     epidemic.DefaultInitialState(),
		Params:      epidemic.DefaultParams(),
	},
	"no_transmission": {
		Description: "β=0, the infection only decays",
		Initial:     epidemic.DefaultInitialState(),
		Params:      epidemic.Params{Beta: 0, Gamma: 0.07, Omega: 0.03, Epsilon: 0.01, Mu: 0.01},
	},
	"closed": {
		Description: "no births or deaths from outside the disease (μ=0)",
		Initial:     epidemic.DefaultInitialState(),
		Params:      epidemic.Params{Beta: 0.22, Gamma: 0.07, Omega: 0.03, Epsilon: 0.01, Mu: 0},
	},
	"fast_spread": {
		Description: "highly transmissible, slow recovery",
		Initial:     epidemic.State{S: 0.999, I: 0.001},
		Params:      epidemic.Params{Beta: 0.45, Gamma: 0.05, Omega: 0.05, Epsilon: 0.01, Mu: 0.01},
	},
}

// GetPreset returns the default config with the named scenario applied, or
// nil if there is no such preset.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Initial = p.Initial
	cfg.Params = p.Params
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
