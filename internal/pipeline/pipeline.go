// Package pipeline chains schema setup, extract, transform and load into one
// run and reports on it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"jobpost-etl/internal/events"
	"jobpost-etl/internal/extract"
	"jobpost-etl/internal/load"
	"jobpost-etl/internal/runlog"
	"jobpost-etl/internal/scheduler"
	"jobpost-etl/internal/staging"
	"jobpost-etl/internal/store"
	"jobpost-etl/internal/transform"
)

// ErrRunning is returned when a run is requested while one is in progress.
var ErrRunning = errors.New("pipeline: a run is already in progress")

type Report struct {
	Record    *runlog.RunRecord `json:"record"`
	Extract   extract.Stats     `json:"extract"`
	Transform transform.Stats   `json:"transform"`
	Load      load.Stats        `json:"load"`
}

type Runner struct {
	db       *store.DB
	recorder *runlog.Recorder
	hub      *events.Hub

	mu      sync.Mutex
	opts    Options
	current string

	running atomic.Bool
}

// New returns a Runner. hub may be nil.
func New(opts Options, db *store.DB, recorder *runlog.Recorder, hub *events.Hub) *Runner {
	return &Runner{opts: opts, db: db, recorder: recorder, hub: hub}
}

func (r *Runner) Running() bool { return r.running.Load() }

// CurrentRun returns the id of the run in progress, or "" when idle.
func (r *Runner) CurrentRun() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Options returns the options the next run will use.
func (r *Runner) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

// Reconfigure replaces the options used from the next run on. A run already
// in progress keeps the options it started with.
func (r *Runner) Reconfigure(opts Options) {
	r.mu.Lock()
	r.opts = opts
	r.mu.Unlock()
	log.Printf("[pipeline] reconfigured source=%s policy=%s workers=%d", opts.SourcePath, opts.Policy, opts.Workers)
}

func (r *Runner) setCurrent(id string) {
	r.mu.Lock()
	r.current = id
	r.mu.Unlock()
}

// Run executes one full pipeline run. Each stage starts only after the one
// before it finished, and each is retried as a whole under the retry policy.
func (r *Runner) Run(ctx context.Context, trigger string) (*Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunning
	}
	defer r.running.Store(false)
	opts := r.Options()

	lock, err := staging.AcquireLock(opts.LockDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	record, err := r.recorder.Start(trigger)
	if err != nil {
		return nil, fmt.Errorf("start run record: %w", err)
	}
	rep := &Report{Record: record}
	r.setCurrent(record.ID)
	defer r.setCurrent("")

	start := time.Now()
	log.Printf("[pipeline] run started id=%s trigger=%s", record.ID, trigger)
	r.hub.Emit(record.ID, events.RunStarted, map[string]any{"trigger": trigger})

	runErr := r.run(ctx, opts, rep)

	if err := r.recorder.Finish(record, runErr); err != nil {
		log.Printf("[pipeline] write run record id=%s err=%v", record.ID, err)
	}
	r.hub.Emit(record.ID, events.RunFinished, map[string]any{
		"status":  record.Status,
		"error":   record.Error,
		"metrics": record.Metrics,
	})
	log.Printf("[pipeline] run finished id=%s status=%s took=%s", record.ID, record.Status, time.Since(start).Round(time.Millisecond))

	if runErr != nil {
		return rep, runErr
	}
	return rep, nil
}

func (r *Runner) run(ctx context.Context, opts Options, rep *Report) error {
	rec := rep.Record
	failFast := opts.Policy == PolicyFail

	if err := r.stage(ctx, opts.Retry, rec, StageSchema, func(ctx context.Context) error {
		return store.Migrate(ctx, r.db)
	}, nil); err != nil {
		return err
	}

	if err := r.stage(ctx, opts.Retry, rec, StageExtract, func(ctx context.Context) error {
		if err := opts.reset(opts.ExtractedDir); err != nil {
			return err
		}
		st, err := extract.Run(ctx, extract.Options{
			SourcePath: opts.SourcePath,
			Sheet:      opts.Sheet,
			Column:     opts.Column,
			Dedupe:     opts.Dedupe,
			OutDir:     opts.ExtractedDir,
		})
		rep.Extract = st
		return err
	}, func() any { return rep.Extract }); err != nil {
		return err
	}
	rec.Add("extract.rows", int64(rep.Extract.Rows))
	rec.Add("extract.written", int64(rep.Extract.Written))
	rec.Add("extract.skipped", int64(rep.Extract.Skipped))
	rec.Add("extract.duplicates", int64(rep.Extract.Duplicates))

	if err := r.stage(ctx, opts.Retry, rec, StageTransform, func(ctx context.Context) error {
		if err := opts.reset(opts.TransformedDir); err != nil {
			return err
		}
		st, err := transform.Run(ctx, transform.Options{
			InDir:    opts.ExtractedDir,
			OutDir:   opts.TransformedDir,
			Workers:  opts.Workers,
			FailFast: failFast,
		})
		rep.Transform = st
		return err
	}, func() any { return rep.Transform }); err != nil {
		return err
	}
	rec.Add("transform.inputs", int64(rep.Transform.Inputs))
	rec.Add("transform.written", int64(rep.Transform.Written))
	rec.Add("transform.skipped", int64(rep.Transform.Skipped))
	for sec, n := range rep.Transform.Degraded {
		rec.Add("transform.degraded."+string(sec), int64(n))
	}
	rec.Skip(rep.Transform.Skips...)

	if err := r.stage(ctx, opts.Retry, rec, StageLoad, func(ctx context.Context) error {
		// A retried attempt picks up after the records already committed.
		prev := rep.Load
		st, err := load.Run(ctx, r.db, load.Options{
			InDir:    opts.TransformedDir,
			FailFast: failFast,
			Resume:   &prev,
		})
		rep.Load = st
		return err
	}, func() any { return rep.Load }); err != nil {
		return err
	}
	rec.Add("load.inputs", int64(rep.Load.Inputs))
	rec.Add("load.loaded", int64(len(rep.Load.Loaded)))
	rec.Add("load.skipped", int64(rep.Load.Skipped))
	rec.Skip(rep.Load.Skips...)
	return nil
}

// stage runs task under the retry policy and announces the outcome.
func (r *Runner) stage(ctx context.Context, policy scheduler.RetryPolicy, rec *runlog.RunRecord, s Stage, task scheduler.Task, stats func() any) error {
	err := scheduler.Retry(ctx, policy, string(s), task)

	data := map[string]any{"stage": s}
	if stats != nil {
		data["stats"] = stats()
	}
	if err != nil {
		data["error"] = err.Error()
		log.Printf("[pipeline] stage failed id=%s stage=%s err=%v", rec.ID, s, err)
	}
	r.hub.Emit(rec.ID, events.StageFinished, data)

	if err != nil {
		return fmt.Errorf("%s: %w", s, err)
	}
	return nil
}

func (o Options) reset(dir string) error {
	if !o.CleanBeforeRun {
		return nil
	}
	return staging.Reset(dir)
}
