package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/epidemic"
	"github.com/san-kum/episim/internal/integrators"
)

const (
	DefaultHorizon  = 100.0
	DefaultPoints   = 100000
	DefaultMethod   = integrators.MethodRK45
	DefaultLogLevel = "info"
)

type Config struct {
	Initial       epidemic.State  `yaml:"initial"`
	Population    float64         `yaml:"population"`
	Params        epidemic.Params `yaml:"params"`
	Grid          GridConfig      `yaml:"grid"`
	Solver        SolverConfig    `yaml:"solver"`
	TrackOmega    bool            `yaml:"track_omega"`
	OmegaBaseline float64         `yaml:"omega_baseline"`
	LogLevel      string          `yaml:"log_level"`
}

type GridConfig struct {
	Start   float64 `yaml:"start"`
	Horizon float64 `yaml:"horizon"`
	Points  int     `yaml:"points"`
}

type SolverConfig struct {
	Method   string  `yaml:"method"`
	RelTol   float64 `yaml:"rel_tol"`
	AbsTol   float64 `yaml:"abs_tol"`
	MinStep  float64 `yaml:"min_step"`
	MaxSteps int     `yaml:"max_steps"`
	Substeps int     `yaml:"substeps"`
}

func DefaultConfig() *Config {
	opts := dynamo.DefaultOptions()
	return &Config{
		Initial: epidemic.DefaultInitialState(),
		Params:  epidemic.DefaultParams(),
		Grid: GridConfig{
			Horizon: DefaultHorizon,
			Points:  DefaultPoints,
		},
		Solver: SolverConfig{
			Method:   DefaultMethod,
			RelTol:   opts.Tolerance.Rel,
			AbsTol:   opts.Tolerance.Abs,
			MinStep:  opts.MinStep,
			MaxSteps: opts.MaxStepsPerInterval,
			Substeps: opts.Substeps,
		},
		OmegaBaseline: epidemic.OmegaBaseline,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings that Solve would not catch on its own, plus
// the parameters themselves so a bad file fails before the UI starts.
func (c *Config) Validate() error {
	if c.Grid.Points < 2 {
		return fmt.Errorf("grid: points must be at least 2, got %d", c.Grid.Points)
	}
	if !(c.Grid.Horizon > 0) || math.IsInf(c.Grid.Horizon, 0) {
		return fmt.Errorf("grid: horizon must be positive and finite, got %g", c.Grid.Horizon)
	}
	if _, err := integrators.New(c.Solver.Method); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if c.Population < 0 || math.IsNaN(c.Population) || math.IsInf(c.Population, 0) {
		return fmt.Errorf("population must be finite and not negative, got %g", c.Population)
	}
	if c.N() <= 0 {
		return fmt.Errorf("population is zero: set population or a non-empty initial state")
	}
	if err := c.Initial.Validate(); err != nil {
		return err
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// N is the configured population, or the initial total when unset.
func (c *Config) N() float64 {
	if c.Population > 0 {
		return c.Population
	}
	return c.Initial.Total()
}

func (c *Config) TimeGrid() []float64 {
	return dynamo.Linspace(c.Grid.Start, c.Grid.Start+c.Grid.Horizon, c.Grid.Points)
}

func (c *Config) Options() dynamo.Options {
	return dynamo.Options{
		Tolerance:           dynamo.Tolerance{Rel: c.Solver.RelTol, Abs: c.Solver.AbsTol},
		MinStep:             c.Solver.MinStep,
		MaxStepsPerInterval: c.Solver.MaxSteps,
		Substeps:            c.Solver.Substeps,
	}
}

func (c *Config) Simulator() (*epidemic.Simulator, error) {
	return epidemic.NewSimulator(c.Solver.Method, c.Options())
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
