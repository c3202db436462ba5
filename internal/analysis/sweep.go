package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/episim/internal/epidemic"
	"github.com/san-kum/episim/internal/metrics"
)

// SweepPoint is the outcome of one run. Err is set when that run failed; the
// other points are unaffected.
type SweepPoint struct {
	Value   float64
	Params  epidemic.Params
	Metrics map[string]float64
	Err     error
}

type Sweep struct {
	Sim     *epidemic.Simulator
	Initial epidemic.State
	Grid    []float64
	N       float64
	Base    epidemic.Params

	// Workers bounds concurrent solves; zero means GOMAXPROCS.
	Workers int
}

// Run solves once for each of steps evenly spaced values of param in
// [min, max]. Only cancellation aborts the whole sweep.
func (s Sweep) Run(ctx context.Context, param string, min, max float64, steps int) ([]SweepPoint, error) {
	if _, ok := s.Base.Get(param); !ok {
		return nil, fmt.Errorf("sweep: unknown parameter %q (want one of %v)", param, epidemic.ParamNames())
	}
	if steps < 1 {
		return nil, fmt.Errorf("sweep: steps must be positive, got %d", steps)
	}
	if max < min {
		return nil, fmt.Errorf("sweep: empty range [%g, %g]", min, max)
	}

	points := make([]SweepPoint, steps)
	for i := range points {
		v := min
		if steps > 1 {
			v = min + float64(i)*(max-min)/float64(steps-1)
		}
		points[i].Value = v
		points[i].Params, _ = s.Base.With(param, v)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i := range points {
		p := &points[i]
		g.Go(func() error {
			tr, err := s.Sim.SolveContext(ctx, s.Initial, s.Grid, s.N, p.Params)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.Err = err
				return nil
			}
			p.Metrics = Summarize(tr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func (s Sweep) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Summarize evaluates the default metrics over tr and adds R0.
func Summarize(tr *epidemic.Trajectory) map[string]float64 {
	out := metrics.Evaluate(tr, metrics.Default(tr.N)...)
	out["r0"] = tr.Params.R0()
	return out
}

// Column extracts one metric across the sweep. Failed points yield NaN.
func Column(points []SweepPoint, metric string) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		v, ok := p.Metrics[metric]
		if p.Err != nil || !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
