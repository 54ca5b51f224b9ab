package config

import (
	"fmt"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trim := func(ps ...*string) {
		for _, p := range ps {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(&out.App.DataDir, &out.App.HTTPAddr, &out.Source.Path, &out.Source.Column, &out.Source.Sheet,
		&out.Staging.ExtractedDir, &out.Staging.TransformedDir, &out.Store.Path, &out.Store.DSN,
		&out.Store.PasswordKeyringAccount, &out.Schedule.At, &out.Runlog.Dir)

	out.Store.Driver = strings.ToLower(strings.TrimSpace(out.Store.Driver))
	out.Pipeline.ErrorPolicy = strings.ToLower(strings.TrimSpace(out.Pipeline.ErrorPolicy))
	out.Schedule.Mode = strings.ToLower(strings.TrimSpace(out.Schedule.Mode))

	if out.App.DataDir == "" {
		out.App.DataDir = "."
	}

	// ---- Validation rules ----

	// source
	if out.Source.Path == "" {
		res.addErr("source.path is required")
	}
	if out.Source.Column == "" {
		res.addErr("source.column is required")
	}
	if out.Source.Sheet != "" && !strings.HasSuffix(strings.ToLower(out.Source.Path), ".xlsx") {
		res.addWarn("source.sheet is only used for .xlsx sources; %q will be ignored", out.Source.Sheet)
	}

	// staging
	if out.Staging.ExtractedDir == "" {
		res.addErr("staging.extracted_dir is required")
	}
	if out.Staging.TransformedDir == "" {
		res.addErr("staging.transformed_dir is required")
	}
	if out.Staging.ExtractedDir != "" && out.Staging.ExtractedDir == out.Staging.TransformedDir {
		res.addErr("staging.extracted_dir and staging.transformed_dir must differ")
	}
	if !out.Staging.CleanBeforeRun {
		res.addWarn("staging.clean_before_run is false; files left by an earlier run will be processed again")
	}

	// store
	switch out.Store.Driver {
	case DriverSQLite:
		if out.Store.Path == "" {
			res.addErr("store.path is required when store.driver=sqlite")
		}
	case DriverPostgres:
		if out.Store.DSN == "" {
			res.addErr("store.dsn is required when store.driver=postgres")
		}
	default:
		res.addErr("store.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, out.Store.Driver)
	}

	// pipeline
	if out.Pipeline.TransformWorkers <= 0 {
		res.addErr("pipeline.transform_workers must be > 0")
	} else if out.Pipeline.TransformWorkers > 64 {
		res.addWarn("pipeline.transform_workers is very high (%d)", out.Pipeline.TransformWorkers)
	}
	switch out.Pipeline.ErrorPolicy {
	case PolicySkip, PolicyFail:
	default:
		res.addErr("pipeline.error_policy must be %q or %q, got %q", PolicySkip, PolicyFail, out.Pipeline.ErrorPolicy)
	}

	// schedule
	switch out.Schedule.Mode {
	case ModeOnce:
	case ModeInterval:
		if out.Schedule.Every <= 0 {
			res.addErr("schedule.every must be > 0 when schedule.mode=interval")
		} else if out.Schedule.Every < time.Minute {
			res.addWarn("schedule.every is very low (%s)", out.Schedule.Every)
		}
	case ModeDaily:
		if _, _, err := ParseClock(out.Schedule.At); err != nil {
			res.addErr("schedule.at: %v", err)
		}
	default:
		res.addErr("schedule.mode must be one of once, interval, daily; got %q", out.Schedule.Mode)
	}
	if out.Schedule.Retries < 0 {
		res.addErr("schedule.retries must be >= 0")
	}
	if out.Schedule.RetryDelay < 0 {
		res.addErr("schedule.retry_delay must be >= 0")
	}
	if out.Schedule.Retries > 0 && out.Schedule.RetryDelay == 0 {
		res.addWarn("schedule.retries is %d with no retry_delay; retries will run back to back", out.Schedule.Retries)
	}

	return out, res
}

// ParseClock parses a local wall-clock time written as HH:MM.
func ParseClock(value string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", strings.TrimSpace(value))
	if perr != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q (want HH:MM)", value)
	}
	return t.Hour(), t.Minute(), nil
}
