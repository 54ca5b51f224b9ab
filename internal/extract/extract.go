// Package extract stages one raw document per source row.
package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"jobpost-etl/internal/staging"
)

type Options struct {
	SourcePath string
	Sheet      string
	Column     string
	Dedupe     bool
	OutDir     string
}

type Stats struct {
	Rows       int `json:"rows"`
	Written    int `json:"written"`
	Skipped    int `json:"skipped"` // null cells
	Duplicates int `json:"duplicates"`
}

// Run writes the Column cell of every row to OutDir as file{n}.txt, where n
// is the 1-based row position. Rows with a null cell are skipped but still
// use up their number, so file names always point back at the source row.
func Run(ctx context.Context, opts Options) (Stats, error) {
	var st Stats

	t, err := ReadSource(opts.SourcePath, opts.Sheet)
	if err != nil {
		return st, fmt.Errorf("read source %s: %w", opts.SourcePath, err)
	}
	col, err := t.Column(opts.Column)
	if err != nil {
		return st, err
	}
	if opts.Dedupe {
		st.Duplicates = t.Dedupe()
	}
	st.Rows = len(t.Rows)
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return st, err
	}

	for i := range t.Rows {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		n := i + 1
		v := t.Cell(i, col)
		if v == nil {
			st.Skipped++
			continue
		}
		path := filepath.Join(opts.OutDir, staging.RawName(n))
		if err := staging.WriteFile(path, []byte(*v)); err != nil {
			return st, fmt.Errorf("write %s: %w", path, err)
		}
		st.Written++
	}

	log.Printf("[extract] source=%q rows=%d written=%d skipped=%d duplicates=%d",
		opts.SourcePath, st.Rows, st.Written, st.Skipped, st.Duplicates)
	return st, nil
}
