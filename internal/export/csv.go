package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/episim/internal/epidemic"
)

// WriteCSV writes one row per grid point with columns time,S,I,R,D.
func WriteCSV(w io.Writer, tr *epidemic.Trajectory) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	for _, c := range epidemic.Compartments {
		header = append(header, c.Short())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, s := range tr.States {
		row[0] = strconv.FormatFloat(tr.Times[i], 'g', -1, 64)
		for j, c := range epidemic.Compartments {
			row[j+1] = strconv.FormatFloat(s.Get(c), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
