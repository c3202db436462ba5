package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/episim/internal/epidemic"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Solver.Method != "rk45" {
		t.Errorf("expected method rk45, got %s", cfg.Solver.Method)
	}
	if cfg.N() != 1 {
		t.Errorf("expected N=1 from the initial state, got %v", cfg.N())
	}
	grid := cfg.TimeGrid()
	if len(grid) != DefaultPoints {
		t.Fatalf("expected %d grid points, got %d", DefaultPoints, len(grid))
	}
	if grid[0] != 0 || grid[len(grid)-1] != DefaultHorizon {
		t.Errorf("grid spans [%v, %v], want [0, %v]", grid[0], grid[len(grid)-1], DefaultHorizon)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episim.yaml")

	cfg := DefaultConfig()
	cfg.Params.Beta = 0.3
	cfg.Grid.Points = 500
	cfg.TrackOmega = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episim.yaml")
	if err := writeFile(path, "params:\n  beta: 0.4\n"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Params.Beta != 0.4 {
		t.Errorf("expected beta 0.4, got %v", cfg.Params.Beta)
	}
	if cfg.Params.Gamma != epidemic.DefaultParams().Gamma {
		t.Errorf("expected default gamma, got %v", cfg.Params.Gamma)
	}
	if cfg.Grid.Points != DefaultPoints {
		t.Errorf("expected default points, got %d", cfg.Grid.Points)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"one point", func(c *Config) { c.Grid.Points = 1 }, "points"},
		{"zero horizon", func(c *Config) { c.Grid.Horizon = 0 }, "horizon"},
		{"unknown method", func(c *Config) { c.Solver.Method = "leapfrog" }, "solver"},
		{"negative population", func(c *Config) { c.Population = -1 }, "population"},
		{"empty population", func(c *Config) { c.Initial = epidemic.State{} }, "population"},
		{"negative beta", func(c *Config) { c.Params.Beta = -0.1 }, "beta"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "DEBUG"
	level, err := cfg.SlogLevel()
	if err != nil {
		t.Fatal(err)
	}
	if level.String() != "DEBUG" {
		t.Errorf("expected DEBUG, got %s", level)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("closed")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params.Mu != 0 {
		t.Errorf("expected mu 0, got %f", cfg.Params.Mu)
	}
	if GetPreset("nope") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d names, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
