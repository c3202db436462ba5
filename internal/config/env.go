package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the EPISIM_* overrides. Unset variables leave their field nil.
type Env struct {
	ConfigPath string   `env:"EPISIM_CONFIG"`
	LogLevel   *string  `env:"EPISIM_LOG_LEVEL"`
	Method     *string  `env:"EPISIM_METHOD"`
	Points     *int     `env:"EPISIM_POINTS"`
	Horizon    *float64 `env:"EPISIM_HORIZON"`
	RelTol     *float64 `env:"EPISIM_RTOL"`
	AbsTol     *float64 `env:"EPISIM_ATOL"`
	Population *float64 `env:"EPISIM_POPULATION"`
	Beta       *float64 `env:"EPISIM_BETA"`
	Gamma      *float64 `env:"EPISIM_GAMMA"`
	Omega      *float64 `env:"EPISIM_OMEGA"`
	Epsilon    *float64 `env:"EPISIM_EPSILON"`
	Mu         *float64 `env:"EPISIM_MU"`
	TrackOmega *bool    `env:"EPISIM_TRACK_OMEGA"`
}

// ParseEnv loads environment variables into target using env tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// Apply copies every set override onto cfg.
func (e Env) Apply(cfg *Config) {
	setString(&cfg.LogLevel, e.LogLevel)
	setString(&cfg.Solver.Method, e.Method)
	if e.Points != nil {
		cfg.Grid.Points = *e.Points
	}
	setFloat(&cfg.Grid.Horizon, e.Horizon)
	setFloat(&cfg.Solver.RelTol, e.RelTol)
	setFloat(&cfg.Solver.AbsTol, e.AbsTol)
	setFloat(&cfg.Population, e.Population)
	setFloat(&cfg.Params.Beta, e.Beta)
	setFloat(&cfg.Params.Gamma, e.Gamma)
	setFloat(&cfg.Params.Omega, e.Omega)
	setFloat(&cfg.Params.Epsilon, e.Epsilon)
	setFloat(&cfg.Params.Mu, e.Mu)
	if e.TrackOmega != nil {
		cfg.TrackOmega = *e.TrackOmega
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Resolve builds the effective configuration: defaults, then the named
// preset, then the file named by path (or EPISIM_CONFIG), then the
// environment. An empty preset keeps the defaults.
func Resolve(path, preset string) (*Config, error) {
	e, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = e.ConfigPath
	}

	cfg := DefaultConfig()
	if preset != "" {
		if cfg = GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, ListPresets())
		}
	}
	if path != "" {
		if err := loadInto(cfg, path); err != nil {
			return nil, err
		}
	}
	e.Apply(cfg)
	return cfg, nil
}
