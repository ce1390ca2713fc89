package storage

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/sim"
)

type runRecord struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"index"`
	CreatedAt  time.Time
	Dt         float64
	Duration   float64
	Steps      int
	Integrator string
	Source     string
	GripCoeff  float64
	ConfigHash string `gorm:"index"`
	Metrics    datatypes.JSONType[map[string]float64]
}

func (runRecord) TableName() string { return "runs" }

type sampleRecord struct {
	ID       uint   `gorm:"primaryKey"`
	RunID    string `gorm:"index:idx_run_seq,priority:1"`
	Seq      int    `gorm:"index:idx_run_seq,priority:2"`
	Time     float64
	State    dynamo.State `gorm:"embedded"`
	Steering float64
	Drive    float64

	// SQLite stores NaN as NULL, so non-finite state fields are zeroed in
	// their columns and listed here as "column=value;..." instead.
	NonFinite string
}

func (sampleRecord) TableName() string { return "samples" }

func encodeNonFinite(s dynamo.State) (dynamo.State, string) {
	if s.IsValid() {
		return s, ""
	}
	vec := s.Vector()
	var parts []string
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			parts = append(parts, dynamo.StateColumns[i]+"="+strconv.FormatFloat(v, 'g', -1, 64))
			vec[i] = 0
		}
	}
	return dynamo.StateFromVector(vec), strings.Join(parts, ";")
}

func decodeNonFinite(s dynamo.State, enc string) (dynamo.State, error) {
	if enc == "" {
		return s, nil
	}
	vec := s.Vector()
	for _, part := range strings.Split(enc, ";") {
		name, raw, ok := strings.Cut(part, "=")
		idx := slices.Index(dynamo.StateColumns, name)
		if !ok || idx < 0 {
			return s, fmt.Errorf("bad non-finite entry %q", part)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return s, fmt.Errorf("bad non-finite entry %q: %w", part, err)
		}
		vec[idx] = v
	}
	return dynamo.StateFromVector(vec), nil
}

// SQLStore keeps runs and their samples in SQLite.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Init() error {
	if err := s.db.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
		return fmt.Errorf("error setting journal_mode PRAGMA: %w", err)
	}
	return s.db.AutoMigrate(&runRecord{}, &sampleRecord{})
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) Save(meta RunMetadata, result *sim.Result) (string, error) {
	prepare(&meta, result)

	run := runRecord{
		ID:         meta.ID,
		Name:       meta.Name,
		CreatedAt:  meta.Timestamp,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      meta.Steps,
		Integrator: meta.Integrator,
		Source:     meta.Source,
		GripCoeff:  meta.GripCoeff,
		ConfigHash: meta.ConfigHash,
		Metrics:    datatypes.NewJSONType(meta.Metrics),
	}

	samples := make([]sampleRecord, len(result.Times))
	for i := range result.Times {
		state, nonFinite := encodeNonFinite(result.States[i])
		samples[i] = sampleRecord{RunID: meta.ID, Seq: i, Time: result.Times[i], State: state, NonFinite: nonFinite}
		if i < len(result.Inputs) {
			samples[i].Steering = result.Inputs[i].Steering
			samples[i].Drive = result.Inputs[i].Drive
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(samples) == 0 {
			return nil
		}
		return tx.CreateInBatches(&samples, 2000).Error
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *SQLStore) List() ([]RunMetadata, error) {
	var runs []runRecord
	if err := s.db.Order("created_at desc").Find(&runs).Error; err != nil {
		return nil, err
	}
	out := make([]RunMetadata, len(runs))
	for i, r := range runs {
		out[i] = r.metadata()
	}
	return out, nil
}

func (s *SQLStore) Load(runID string) (*RunMetadata, error) {
	var run runRecord
	if err := s.db.Where("id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	meta := run.metadata()
	return &meta, nil
}

func (s *SQLStore) LoadStates(runID string) (*Trajectory, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}

	var samples []sampleRecord
	if err := s.db.Where("run_id = ?", runID).Order("seq").Find(&samples).Error; err != nil {
		return nil, err
	}

	tr := &Trajectory{
		Times:  make([]float64, len(samples)),
		States: make([]dynamo.State, len(samples)),
		Inputs: make([]dynamo.Input, len(samples)),
	}
	for i, smp := range samples {
		state, err := decodeNonFinite(smp.State, smp.NonFinite)
		if err != nil {
			return nil, fmt.Errorf("run %s sample %d: %w", runID, smp.Seq, err)
		}
		tr.Times[i] = smp.Time
		tr.States[i] = state
		tr.Inputs[i] = dynamo.Input{Steering: smp.Steering, Drive: smp.Drive}
	}
	return tr, nil
}

func (r runRecord) metadata() RunMetadata {
	return RunMetadata{
		ID:         r.ID,
		Name:       r.Name,
		Timestamp:  r.CreatedAt,
		Dt:         r.Dt,
		Duration:   r.Duration,
		Steps:      r.Steps,
		Integrator: r.Integrator,
		Source:     r.Source,
		GripCoeff:  r.GripCoeff,
		ConfigHash: r.ConfigHash,
		Metrics:    r.Metrics.Data(),
	}
}
