// Package export writes trajectories as CSV, JSON or SVG.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/episim/internal/epidemic"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// Write encodes tr to w in the named format. metrics is only used by JSON.
func Write(w io.Writer, format string, tr *epidemic.Trajectory, metrics map[string]float64) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, tr)
	case FormatJSON:
		return WriteJSON(w, tr, metrics)
	case FormatSVG:
		return WriteSVG(w, tr, DefaultSVGWidth, DefaultSVGHeight)
	}
	return fmt.Errorf("unknown export format %q (want one of %v)", format, Formats())
}

func Formats() []string {
	f := []string{FormatCSV, FormatJSON, FormatSVG}
	sort.Strings(f)
	return f
}
