// Package storage persists simulation runs.
//
// Two backends share the [Store] interface: a directory of runs, each with
// metadata.json and states.csv, and a SQLite database through gorm.
package storage

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Source     string             `json:"source"`
	GripCoeff  float64            `json:"grip_coeff"`
	ConfigHash string             `json:"config_hash,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Trajectory is a stored run's sampled telemetry.
type Trajectory struct {
	Times  []float64
	States []dynamo.State
	Inputs []dynamo.Input
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// FromResult copies the sampled part of a result.
func FromResult(r *sim.Result) *Trajectory {
	return &Trajectory{Times: r.Times, States: r.States, Inputs: r.Inputs}
}

type Store interface {
	Init() error
	Save(meta RunMetadata, result *sim.Result) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadStates(runID string) (*Trajectory, error)
	Close() error
}

// Open returns the backend of the given kind rooted at dir.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(dir), nil
	case "sqlite":
		return NewSQLStore(filepath.Join(dir, "runs.db"))
	default:
		return nil, fmt.Errorf("%w: store %q", dynamo.ErrUnknownComponent, kind)
	}
}

func newRunID(name string) string {
	if name == "" {
		name = "run"
	}
	return fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
}

func prepare(meta *RunMetadata, result *sim.Result) {
	if meta.ID == "" {
		meta.ID = newRunID(meta.Name)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Steps = result.StepsTaken
	if meta.Dt == 0 {
		meta.Dt = result.Dt
	}
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}

	// a diverged run carries NaN metrics, which JSON cannot encode
	finite := make(map[string]float64, len(meta.Metrics))
	for k, v := range meta.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite[k] = v
		}
	}
	meta.Metrics = finite
}
