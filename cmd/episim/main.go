package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/episim/internal/config"
)

var (
	configFile string
	preset     string
	logLevel   string

	method     string
	rtol       float64
	atol       float64
	points     int
	horizon    float64
	population float64
	trackOmega bool

	beta    float64
	gamma   float64
	omega   float64
	epsilon float64
	mu      float64

	// cfg is the effective configuration, resolved before every command.
	cfg *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "episim",
		Short: "S/I/R/D epidemic simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = resolveConfig(cmd); err != nil {
				return err
			}
			return setupLogging(cmd, cfg)
		},
		RunE:         runTUI,
		SilenceUsage: true,
	}

	def := config.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset scenario (file, env and flags still override it)")
	pf.StringVar(&logLevel, "log-level", def.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&method, "method", def.Solver.Method, "integration method")
	pf.Float64Var(&rtol, "rtol", def.Solver.RelTol, "relative tolerance (rk45)")
	pf.Float64Var(&atol, "atol", def.Solver.AbsTol, "absolute tolerance (rk45)")
	pf.IntVar(&points, "points", def.Grid.Points, "number of time grid points")
	pf.Float64Var(&horizon, "horizon", def.Grid.Horizon, "time horizon")
	pf.Float64Var(&population, "population", def.Population, "population N (0 = sum of initial state)")
	pf.BoolVar(&trackOmega, "track-omega", def.TrackOmega, "derive mortality as baseline - gamma on every change")
	pf.Float64Var(&beta, "beta", def.Params.Beta, "transmission rate")
	pf.Float64Var(&gamma, "gamma", def.Params.Gamma, "recovery rate")
	pf.Float64Var(&omega, "omega", def.Params.Omega, "mortality rate")
	pf.Float64Var(&epsilon, "epsilon", def.Params.Epsilon, "latency rate")
	pf.Float64Var(&mu, "mu", def.Params.Mu, "population growth rate")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive sliders and chart",
		RunE:  runTUI,
	}

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve once and plot the trajectories",
		RunE:  runSolve,
	}
	solveCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")
	solveCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "solve once and write the trajectory to stdout",
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format (csv, json, svg)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "vary one rate and report outcome metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.05, "range start")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.5, "range end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().StringVar(&metricName, "metric", "peak_infected", "metric to plot")

	searchCmd := &cobra.Command{
		Use:   "search [param=min:max:steps] ...",
		Short: "grid search rates for the best metric value",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().StringVar(&metricName, "metric", "peak_infected", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")

	compareCmd := &cobra.Command{
		Use:   "compare [method] ...",
		Short: "compare integration methods against a tight reference",
		RunE:  runCompare,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range config.ListPresets() {
				fmt.Fprintf(out, "  %-16s %s\n", name, config.Presets[name].Description)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "show or write configuration",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "print the effective configuration",
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "init [path]",
			Short: "write the default configuration to a file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.Save(args[0], config.DefaultConfig()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
				return nil
			},
		},
	)

	rootCmd.AddCommand(tuiCmd, solveCmd, exportCmd, sweepCmd, searchCmd, compareCmd, presetsCmd, configCmd)
	return rootCmd
}

// resolveConfig layers defaults, the preset, the config file, EPISIM_*
// variables and finally any flag set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Resolve(configFile, preset)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("method") {
		c.Solver.Method = method
	}
	if flags.Changed("rtol") {
		c.Solver.RelTol = rtol
	}
	if flags.Changed("atol") {
		c.Solver.AbsTol = atol
	}
	if flags.Changed("points") {
		c.Grid.Points = points
	}
	if flags.Changed("horizon") {
		c.Grid.Horizon = horizon
	}
	if flags.Changed("population") {
		c.Population = population
	}
	if flags.Changed("track-omega") {
		c.TrackOmega = trackOmega
	}
	if flags.Changed("beta") {
		c.Params.Beta = beta
	}
	if flags.Changed("gamma") {
		c.Params.Gamma = gamma
	}
	if flags.Changed("omega") {
		c.Params.Omega = omega
	}
	if flags.Changed("epsilon") {
		c.Params.Epsilon = epsilon
	}
	if flags.Changed("mu") {
		c.Params.Mu = mu
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func setupLogging(cmd *cobra.Command, c *config.Config) error {
	level, err := c.SlogLevel()
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
