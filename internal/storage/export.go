package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/san-kum/kartsim/internal/dynamo"
)

type ExportData struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Integrator string             `json:"integrator"`
	Source     string             `json:"source"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Columns    []string           `json:"columns"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Inputs     [][2]float64       `json:"inputs"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run and its telemetry as one indented JSON document.
// JSON has no NaN or Inf, so a trajectory holding a diverged sample is
// rejected with ErrInvalidState; export it as CSV instead.
func ExportJSON(w io.Writer, meta *RunMetadata, tr *Trajectory) error {
	for i, s := range tr.States {
		if !s.IsValid() {
			return fmt.Errorf("%w: sample %d (t=%g)", dynamo.ErrInvalidState, i, tr.Times[i])
		}
	}

	data := ExportData{
		ID:         meta.ID,
		Name:       meta.Name,
		Integrator: meta.Integrator,
		Source:     meta.Source,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      meta.Steps,
		Columns:    dynamo.StateColumns,
		Times:      tr.Times,
		States:     make([][]float64, len(tr.States)),
		Inputs:     make([][2]float64, len(tr.Inputs)),
		Metrics:    meta.Metrics,
	}

	for i, s := range tr.States {
		data.States[i] = s.Vector()
	}
	for i, in := range tr.Inputs {
		data.Inputs[i] = [2]float64{in.Steering, in.Drive}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
