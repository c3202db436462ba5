package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/episim/internal/analysis"
	"github.com/san-kum/episim/internal/epidemic"
)

// Objective scores one parameter combination as a set of named metrics.
type Objective func(ctx context.Context, params map[string]float64) (map[string]float64, error)

// ErrNoFeasible is returned when every combination failed to evaluate.
var ErrNoFeasible = errors.New("optim: no combination could be evaluated")

type Result struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Failed    int
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize flips the search to prefer the largest metric value.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search evaluates every combination of the configured ranges and returns
// the best by metricName. Failed combinations are counted and skipped.
func (g *GridSearch) Search(ctx context.Context, objective Objective, metricName string) (*Result, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	res := &Result{Value: math.Inf(1)}
	if g.maximize {
		res.Value = math.Inf(-1)
	}

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, metricName, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return res, ErrNoFeasible
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	metricName string,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		res.Evaluated++
		m, err := objective(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			res.Failed++
			return nil
		}

		val, ok := m[metricName]
		if !ok {
			return fmt.Errorf("optim: objective has no metric %q", metricName)
		}
		if g.better(val, res.Value) {
			res.Value = val
			res.Params = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, objective, metricName, res); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) better(val, best float64) bool {
	if math.IsNaN(val) {
		return false
	}
	if g.maximize {
		return val > best
	}
	return val < best
}

// Values returns steps evenly spaced values in [min, max].
func Values(min, max float64, steps int) []float64 {
	if steps <= 1 {
		return []float64{min}
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = min + float64(i)*(max-min)/float64(steps-1)
	}
	return out
}

// SimulationObjective solves the scenario with base overridden by the
// searched parameters and scores it with analysis.Summarize.
func SimulationObjective(sim *epidemic.Simulator, initial epidemic.State, grid []float64, n float64, base epidemic.Params) Objective {
	return func(ctx context.Context, params map[string]float64) (map[string]float64, error) {
		p := base
		for name, v := range params {
			var err error
			if p, err = p.With(name, v); err != nil {
				return nil, err
			}
		}
		tr, err := sim.SolveContext(ctx, initial, grid, n, p)
		if err != nil {
			return nil, err
		}
		return analysis.Summarize(tr), nil
	}
}
