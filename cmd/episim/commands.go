package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/episim/internal/analysis"
	"github.com/san-kum/episim/internal/epidemic"
	"github.com/san-kum/episim/internal/export"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/optim"
	"github.com/san-kum/episim/internal/session"
	"github.com/san-kum/episim/internal/viz"
)

var (
	plotHeight   int
	plotWidth    int
	exportFormat string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	metricName   string
	maximize     bool
)

func runTUI(cmd *cobra.Command, args []string) error {
	sim, err := cfg.Simulator()
	if err != nil {
		return err
	}

	opts := []session.Option{session.WithLogger(slog.Default())}
	if cfg.TrackOmega {
		opts = append(opts, session.WithTrackOmega(cfg.OmegaBaseline))
	}

	frame := viz.NewFrame()
	sess := session.New(sim, cfg.Initial, cfg.TimeGrid(), cfg.N(), cfg.Params, frame, opts...)
	defer sess.Close()

	return viz.Run(sess, frame)
}

// solveOnce solves the configured scenario, logging how long it took.
func solveOnce(ctx context.Context) (*epidemic.Trajectory, error) {
	sim, err := cfg.Simulator()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tr, err := sim.SolveContext(ctx, cfg.Initial, cfg.TimeGrid(), cfg.N(), cfg.Params)
	if err != nil {
		return nil, err
	}
	slog.Debug("solved", "method", tr.Method, "points", tr.Len(), "accepted", tr.Stats.Accepted,
		"rejected", tr.Stats.Rejected, "evaluations", tr.Stats.Evaluations, "elapsed", time.Since(start))
	return tr, nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	tr, err := solveOnce(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Chart(tr.Times, tr, plotWidth, plotHeight, viz.ThemeCyberpunk))
	fmt.Fprintln(out)
	printMetrics(out, analysis.Summarize(tr))
	return nil
}

func printMetrics(out io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, m[name])
	}
	w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	tr, err := solveOnce(ctx)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), exportFormat, tr, analysis.Summarize(tr))
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	sim, err := cfg.Simulator()
	if err != nil {
		return err
	}
	sw := analysis.Sweep{Sim: sim, Initial: cfg.Initial, Grid: cfg.TimeGrid(), N: cfg.N(), Base: cfg.Params}

	start := time.Now()
	points, err := sw.Run(ctx, args[0], sweepMin, sweepMax, sweepSteps)
	if err != nil {
		return err
	}
	slog.Debug("sweep finished", "param", args[0], "steps", len(points), "elapsed", time.Since(start))

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tr0\tpeak_infected\tpeak_time\tfinal_mortality\tattack_rate\n", args[0])
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%.4f\terror: %v\n", p.Value, p.Err)
			continue
		}
		m := p.Metrics
		fmt.Fprintf(w, "%.4f\t%.3f\t%.4f\t%.2f\t%.4f\t%.4f\n",
			p.Value, m["r0"], m["peak_infected"], m["peak_time"], m["final_mortality"], m["attack_rate"])
	}
	w.Flush()

	col := analysis.Column(points, metricName)
	if len(col) > 1 && hasFinite(col) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(col,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("%s vs %s", metricName, args[0])),
		))
	}
	return nil
}

func hasFinite(v []float64) bool {
	for _, x := range v {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

// parseRange parses "name=min:max:steps".
func parseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("range %q: want name=min:max:steps", s)
	}
	if _, known := epidemic.DefaultParams().Get(name); !known {
		return "", nil, fmt.Errorf("range %q: unknown parameter %q (want one of %v)", s, name, epidemic.ParamNames())
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("range %q: want name=min:max:steps", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %q: min: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %q: max: %w", s, err)
	}
	steps, err := strconv.Atoi(parts[2])
	if err != nil || steps < 1 {
		return "", nil, fmt.Errorf("range %q: steps must be a positive integer", s)
	}
	return name, optim.Values(lo, hi, steps), nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	names := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, a := range args {
		name, values, err := parseRange(a)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	sim, err := cfg.Simulator()
	if err != nil {
		return err
	}

	g := optim.NewGridSearch(names, ranges)
	if maximize {
		g.Maximize()
	}
	res, err := g.Search(ctx, optim.SimulationObjective(sim, cfg.Initial, cfg.TimeGrid(), cfg.N(), cfg.Params), metricName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "evaluated %d combinations (%d failed)\n", res.Evaluated, res.Failed)
	fmt.Fprintf(out, "best %s = %.6g\n", metricName, res.Value)
	for _, name := range names {
		fmt.Fprintf(out, "  %s = %.4f\n", name, res.Params[name])
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	methods := args
	if len(methods) == 0 {
		methods = integrators.Names()
	}

	refSim, err := cfg.Simulator()
	if err != nil {
		return err
	}
	refOpts := refSim.Options()
	refOpts.Tolerance.Rel /= 100
	refOpts.Tolerance.Abs /= 100
	refSim, err = epidemic.NewSimulator(integrators.MethodRK45, refOpts)
	if err != nil {
		return err
	}
	ref, err := refSim.SolveContext(ctx, cfg.Initial, cfg.TimeGrid(), cfg.N(), cfg.Params)
	if err != nil {
		return fmt.Errorf("reference solve: %w", err)
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "method\tmax deviation\taccepted\trejected\tevaluations\telapsed")
	for _, m := range methods {
		sim, err := epidemic.NewSimulator(m, cfg.Options())
		if err != nil {
			return err
		}
		start := time.Now()
		tr, err := sim.SolveContext(ctx, cfg.Initial, cfg.TimeGrid(), cfg.N(), cfg.Params)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", m, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.3e\t%d\t%d\t%d\t%v\n", m, tr.MaxDeviation(ref),
			tr.Stats.Accepted, tr.Stats.Rejected, tr.Stats.Evaluations, time.Since(start).Round(time.Millisecond))
	}
	return w.Flush()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
