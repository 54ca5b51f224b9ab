package pipeline

import (
	"fmt"
	"path/filepath"

	"jobpost-etl/internal/config"
	"jobpost-etl/internal/scheduler"
)

type Stage string

const (
	StageSchema    Stage = "schema"
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// ErrorPolicy decides what a stage does with a record it cannot process.
type ErrorPolicy string

const (
	// PolicySkip logs the record, adds it to the run report and moves on.
	PolicySkip ErrorPolicy = config.PolicySkip
	// PolicyFail aborts the stage, which the retry policy may then rerun.
	PolicyFail ErrorPolicy = config.PolicyFail
)

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case PolicySkip, "":
		return PolicySkip, nil
	case PolicyFail:
		return PolicyFail, nil
	}
	return "", fmt.Errorf("unknown error policy %q", s)
}

type Options struct {
	SourcePath string
	Sheet      string
	Column     string
	Dedupe     bool

	ExtractedDir   string
	TransformedDir string
	CleanBeforeRun bool
	// LockDir holds the lock that keeps two runs off the same staging dirs.
	LockDir string

	Workers int
	Policy  ErrorPolicy
	Retry   scheduler.RetryPolicy
}

// OptionsFromConfig resolves every path in cfg against its data dir.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	policy, err := ParseErrorPolicy(cfg.Pipeline.ErrorPolicy)
	if err != nil {
		return Options{}, err
	}
	extracted := cfg.Resolve(cfg.Staging.ExtractedDir)
	return Options{
		SourcePath:     cfg.Resolve(cfg.Source.Path),
		Sheet:          cfg.Source.Sheet,
		Column:         cfg.Source.Column,
		Dedupe:         cfg.Source.Dedupe,
		ExtractedDir:   extracted,
		TransformedDir: cfg.Resolve(cfg.Staging.TransformedDir),
		CleanBeforeRun: cfg.Staging.CleanBeforeRun,
		LockDir:        filepath.Dir(extracted),
		Workers:        cfg.Pipeline.TransformWorkers,
		Policy:         policy,
		Retry: scheduler.RetryPolicy{
			Retries: cfg.Schedule.Retries,
			Delay:   cfg.Schedule.RetryDelay,
		},
	}, nil
}
