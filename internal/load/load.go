// Package load writes staged normalized records into the store.
package load

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"jobpost-etl/internal/runlog"
	"jobpost-etl/internal/staging"
	"jobpost-etl/internal/store"
)

const stageName = "load"

type Options struct {
	InDir string
	// FailFast aborts the stage on the first record that cannot be loaded
	// instead of skipping it.
	FailFast bool
	// Resume holds the stats of an earlier attempt in the same run. Files
	// it already committed are not loaded again and keep their sequence.
	Resume *Stats
}

// Loaded ties the run-local sequence number of a record to the job id the
// store assigned it.
type Loaded struct {
	Seq   int    `json:"seq"`
	File  string `json:"file"`
	JobID int64  `json:"job_id"`
}

type Stats struct {
	Inputs  int                    `json:"inputs"`
	Loaded  []Loaded               `json:"loaded"`
	Skipped int                    `json:"skipped"`
	Skips   []runlog.SkippedRecord `json:"-"`
}

// Run loads every normalized file in InDir in numeric order. Each record is
// saved in its own transaction; a record that fails leaves no rows behind.
// On error the returned Stats still list what was committed, so a retry can
// pass them back as Options.Resume.
func Run(ctx context.Context, db *store.DB, opts Options) (Stats, error) {
	var st Stats
	committed := make(map[string]bool)
	if opts.Resume != nil {
		st.Loaded = append(st.Loaded, opts.Resume.Loaded...)
		for _, l := range opts.Resume.Loaded {
			committed[l.File] = true
		}
	}

	v, err := NewValidator()
	if err != nil {
		return st, err
	}

	names, err := staging.List(opts.InDir)
	if err != nil {
		return st, err
	}
	staging.SortNormalized(names)
	st.Inputs = len(names)

	seq := len(st.Loaded)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if committed[name] {
			continue
		}

		jobID, err := loadFile(ctx, db, v, filepath.Join(opts.InDir, name))
		if err != nil {
			if opts.FailFast || ctx.Err() != nil {
				return st, fmt.Errorf("%s: %w", name, err)
			}
			log.Printf("[load] skipped file=%q err=%v", name, err)
			st.Skipped++
			st.Skips = append(st.Skips, runlog.SkippedRecord{Stage: stageName, File: name, Reason: err.Error()})
			continue
		}

		seq++
		st.Loaded = append(st.Loaded, Loaded{Seq: seq, File: name, JobID: jobID})
		log.Printf("[load] seq=%d file=%q job_id=%d", seq, name, jobID)
	}

	log.Printf("[load] inputs=%d loaded=%d skipped=%d", st.Inputs, len(st.Loaded), st.Skipped)
	return st, nil
}

func loadFile(ctx context.Context, db *store.DB, v *Validator, path string) (int64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	rec, err := v.Decode(b)
	if err != nil {
		return 0, err
	}
	return db.SavePosting(ctx, rec)
}
