// Package runlog keeps one JSON record per pipeline run on disk.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// SkippedRecord is one staged file a stage gave up on and moved past.
type SkippedRecord struct {
	Stage  string `json:"stage"`
	File   string `json:"file"`
	Reason string `json:"reason"`
}

type RunRecord struct {
	ID          string           `json:"id"`
	Trigger     string           `json:"trigger,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at,omitempty"`
	Status      Status           `json:"status"`
	Error       string           `json:"error,omitempty"`
	Metrics     map[string]int64 `json:"metrics,omitempty"`
	Skipped     []SkippedRecord  `json:"skipped,omitempty"`
}

// Add increments the named counter.
func (r *RunRecord) Add(name string, n int64) {
	if r.Metrics == nil {
		r.Metrics = make(map[string]int64)
	}
	r.Metrics[name] += n
}

func (r *RunRecord) Skip(recs ...SkippedRecord) {
	r.Skipped = append(r.Skipped, recs...)
}

type Recorder struct {
	dir   string
	now   func() time.Time
	newID func() string
}

func NewRecorder(dir string) *Recorder {
	return &Recorder{
		dir:   dir,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Start creates and persists a record in the started state.
func (r *Recorder) Start(trigger string) (*RunRecord, error) {
	if r == nil {
		return nil, errors.New("runlog: recorder is nil")
	}
	if r.dir == "" {
		return nil, errors.New("runlog: directory is required")
	}
	record := &RunRecord{
		ID:        r.newID(),
		Trigger:   trigger,
		StartedAt: r.now(),
		Status:    StatusStarted,
	}
	if err := r.write(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Recorder) Finish(record *RunRecord, runErr error) error {
	if r == nil {
		return errors.New("runlog: recorder is nil")
	}
	if record == nil {
		return errors.New("runlog: record is nil")
	}
	record.CompletedAt = r.now()
	if runErr != nil {
		record.Status = StatusFailed
		record.Error = runErr.Error()
	} else {
		record.Status = StatusCompleted
		record.Error = ""
	}
	return r.write(record)
}

// Latest returns the most recently started run, or nil when none exist.
func (r *Recorder) Latest() (*RunRecord, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var runs []*RunRecord
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "run-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			return nil, err
		}
		var rec RunRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("runlog %s: %w", name, err)
		}
		runs = append(runs, &rec)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	return runs[0], nil
}

func (r *Recorder) write(record *RunRecord) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.dir, fmt.Sprintf("run-%s.json", record.ID))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
