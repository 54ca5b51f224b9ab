package runlog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ids := 0
	r := NewRecorder(t.TempDir())
	r.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	r.newID = func() string {
		ids++
		return []string{"a", "b", "c"}[ids-1]
	}
	return r
}

func readRecord(t *testing.T, dir, id string) RunRecord {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, "run-"+id+".json"))
	require.NoError(t, err)
	var rec RunRecord
	require.NoError(t, json.Unmarshal(b, &rec))
	return rec
}

func TestStartFinishCompleted(t *testing.T) {
	r := newTestRecorder(t)

	rec, err := r.Start("schedule")
	require.NoError(t, err)
	require.Equal(t, StatusStarted, readRecord(t, r.dir, "a").Status)

	rec.Add("extract.written", 2)
	rec.Add("extract.written", 1)
	rec.Skip(SkippedRecord{Stage: "transform", File: "file2.txt", Reason: "bad json"})
	require.NoError(t, r.Finish(rec, nil))

	got := readRecord(t, r.dir, "a")
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, "schedule", got.Trigger)
	require.Equal(t, int64(3), got.Metrics["extract.written"])
	require.Len(t, got.Skipped, 1)
	require.True(t, got.CompletedAt.After(got.StartedAt))
}

func TestFinishFailed(t *testing.T) {
	r := newTestRecorder(t)
	rec, err := r.Start("manual")
	require.NoError(t, err)
	require.NoError(t, r.Finish(rec, errors.New("load: boom")))

	got := readRecord(t, r.dir, "a")
	require.Equal(t, StatusFailed, got.Status)
	require.Equal(t, "load: boom", got.Error)
}

func TestLatest(t *testing.T) {
	r := newTestRecorder(t)

	latest, err := r.Latest()
	require.NoError(t, err)
	require.Nil(t, latest)

	_, err = r.Start("schedule")
	require.NoError(t, err)
	_, err = r.Start("manual")
	require.NoError(t, err)

	latest, err = r.Latest()
	require.NoError(t, err)
	require.Equal(t, "b", latest.ID)
}

func TestStartNeedsDir(t *testing.T) {
	_, err := NewRecorder("").Start("manual")
	require.Error(t, err)

	var r *Recorder
	_, err = r.Start("manual")
	require.Error(t, err)
}

func TestLatestMissingDir(t *testing.T) {
	latest, err := NewRecorder(filepath.Join(t.TempDir(), "nope")).Latest()
	require.NoError(t, err)
	require.Nil(t, latest)
}
