package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/episim/internal/epidemic"
)

// Downsample picks n evenly spaced samples from series, always keeping the
// first and last value. Series no longer than n are copied unchanged.
func Downsample(series []float64, n int) []float64 {
	if n <= 0 || len(series) == 0 {
		return nil
	}
	if len(series) <= n {
		return append([]float64(nil), series...)
	}
	if n == 1 {
		return []float64{series[len(series)-1]}
	}
	out := make([]float64, n)
	last := len(series) - 1
	for i := range out {
		out[i] = series[i*last/(n-1)]
	}
	return out
}

// Chart plots the four compartments of tr against times.
func Chart(times []float64, tr *epidemic.Trajectory, width, height int, theme Theme) string {
	if tr == nil || tr.Len() == 0 {
		return ""
	}
	if width < 10 {
		width = 10
	}
	if height < 3 {
		height = 3
	}

	data := make([][]float64, len(epidemic.Compartments))
	legends := make([]string, len(epidemic.Compartments))
	for i, c := range epidemic.Compartments {
		data[i] = Downsample(tr.Series(c), width)
		legends[i] = c.String()
	}

	caption := fmt.Sprintf("t = %g … %g", times[0], times[len(times)-1])
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(theme.Series[:]...),
		asciigraph.SeriesLegends(legends...),
	)
}
