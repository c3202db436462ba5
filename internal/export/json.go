package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/epidemic"
)

type ExportData struct {
	Method  string              `json:"method"`
	N       float64             `json:"n"`
	Params  epidemic.Params     `json:"params"`
	Steps   int                 `json:"steps"`
	Stats   dynamo.Stats        `json:"stats"`
	Times   []float64           `json:"times"`
	States  []epidemic.State    `json:"states"`
	Metrics map[string]*float64 `json:"metrics,omitempty"`
}

// WriteJSON writes tr with its metrics as indented JSON. Metrics that are not
// finite, such as R0 with no removal at all, are written as null.
func WriteJSON(w io.Writer, tr *epidemic.Trajectory, metrics map[string]float64) error {
	data := ExportData{
		Method:  tr.Method,
		N:       tr.N,
		Params:  tr.Params,
		Steps:   tr.Len(),
		Stats:   tr.Stats,
		Times:   tr.Times,
		States:  tr.States,
		Metrics: finiteMetrics(metrics),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func finiteMetrics(m map[string]float64) map[string]*float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]*float64, len(m))
	for name, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[name] = nil
			continue
		}
		out[name] = &v
	}
	return out
}
