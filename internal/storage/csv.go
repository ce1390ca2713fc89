package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// CSVHeader is time, the state columns, then steering and drive.
func CSVHeader() []string {
	header := []string{"time"}
	header = append(header, dynamo.StateColumns...)
	return append(header, "steering", "drive")
}

func WriteCSV(w io.Writer, tr *Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}

	for i := range tr.Times {
		row := []string{formatFloat(tr.Times[i])}
		for _, val := range tr.States[i].Vector() {
			row = append(row, formatFloat(val))
		}
		var in dynamo.Input
		if i < len(tr.Inputs) {
			in = tr.Inputs[i]
		}
		row = append(row, formatFloat(in.Steering), formatFloat(in.Drive))

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (*Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &Trajectory{}
	if len(records) < 2 {
		return tr, nil
	}

	nState := len(dynamo.StateColumns)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("states.csv line %d column %d: %w", i+1, j+1, err)
			}
			vals[j] = v
		}

		tr.Times = append(tr.Times, vals[0])
		end := min(1+nState, len(vals))
		tr.States = append(tr.States, dynamo.StateFromVector(vals[1:end]))
		var in dynamo.Input
		if len(vals) >= nState+3 {
			in = dynamo.Input{Steering: vals[nState+1], Drive: vals[nState+2]}
		}
		tr.Inputs = append(tr.Inputs, in)
	}

	return tr, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
