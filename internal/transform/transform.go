// Package transform maps staged raw documents to normalized records.
package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"jobpost-etl/internal/mapper"
	"jobpost-etl/internal/model"
	"jobpost-etl/internal/runlog"
	"jobpost-etl/internal/staging"
)

const stageName = "transform"

type Options struct {
	InDir   string
	OutDir  string
	Workers int
	// FailFast aborts the stage on the first unreadable document instead of
	// skipping it.
	FailFast bool
}

type Stats struct {
	Inputs   int                    `json:"inputs"`
	Written  int                    `json:"written"`
	Skipped  int                    `json:"skipped"`
	Degraded map[model.Section]int  `json:"degraded,omitempty"`
	Skips    []runlog.SkippedRecord `json:"-"`
}

type outcome struct {
	res mapper.Result
	err error
}

// Run maps every file in InDir and writes the results to OutDir as 1.json,
// 2.json, ... in source row order. Output numbers are dense: a skipped input
// does not leave a gap.
func Run(ctx context.Context, opts Options) (Stats, error) {
	st := Stats{Degraded: make(map[model.Section]int)}

	names, err := staging.List(opts.InDir)
	if err != nil {
		return st, err
	}
	staging.SortRaw(names)
	st.Inputs = len(names)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return st, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]outcome, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := mapFile(filepath.Join(opts.InDir, name))
			if err != nil {
				if opts.FailFast {
					return fmt.Errorf("%s: %w", name, err)
				}
				results[i].err = err
				return nil
			}
			results[i].res = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return st, err
	}

	n := 0
	for i, out := range results {
		if out.err != nil {
			log.Printf("[transform] skipped file=%q err=%v", names[i], out.err)
			st.Skipped++
			st.Skips = append(st.Skips, runlog.SkippedRecord{Stage: stageName, File: names[i], Reason: out.err.Error()})
			continue
		}
		for sec := range out.res.Absent {
			st.Degraded[sec]++
		}

		b, err := json.MarshalIndent(out.res.Record, "", "  ")
		if err != nil {
			return st, fmt.Errorf("encode %s: %w", names[i], err)
		}
		n++
		path := filepath.Join(opts.OutDir, staging.NormalizedName(n))
		if err := staging.WriteFile(path, b); err != nil {
			return st, fmt.Errorf("write %s: %w", path, err)
		}
		st.Written++
	}

	log.Printf("[transform] inputs=%d written=%d skipped=%d degraded=%v",
		st.Inputs, st.Written, st.Skipped, st.Degraded)
	return st, nil
}

func mapFile(path string) (mapper.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return mapper.Result{}, err
	}
	doc, err := model.ParseRawDocument(b)
	if err != nil {
		return mapper.Result{}, err
	}
	return mapper.Map(doc), nil
}
