package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/episim/internal/epidemic"
	"github.com/san-kum/episim/internal/viz"
)

const (
	DefaultSVGWidth  = 800
	DefaultSVGHeight = 400
)

var seriesColors = map[epidemic.Compartment]string{
	epidemic.Susceptible: "#3399ff",
	epidemic.Infected:    "#ffaa00",
	epidemic.Recovered:   "#33cc66",
	epidemic.Deceased:    "#ff4444",
}

// WriteSVG draws the four compartments as polylines over a shared y axis
// starting at zero.
func WriteSVG(w io.Writer, tr *epidemic.Trajectory, width, height int) error {
	if tr.Len() < 2 {
		return fmt.Errorf("svg: need at least 2 points, got %d", tr.Len())
	}

	times := viz.Downsample(tr.Times, width)
	minX, maxX := times[0], times[len(times)-1]
	maxY := 0.0
	series := make(map[epidemic.Compartment][]float64, len(epidemic.Compartments))
	for _, c := range epidemic.Compartments {
		s := viz.Downsample(tr.Series(c), width)
		for _, v := range s {
			if v > maxY {
				maxY = v
			}
		}
		series[c] = s
	}
	if maxY == 0 {
		maxY = 1
	}
	maxY *= 1.05

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, c := range epidemic.Compartments {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" data-series="%s" d="M`, seriesColors[c], c))
		for i, v := range series[c] {
			x := (times[i] - minX) / (maxX - minX) * float64(width)
			y := float64(height) - v/maxY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	for i, c := range epidemic.Compartments {
		sb.WriteString(fmt.Sprintf(`<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 20+16*i, seriesColors[c], c))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
