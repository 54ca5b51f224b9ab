package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  path: exports/jobs.xlsx
schedule:
  retry_delay: 90s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "exports/jobs.xlsx", cfg.Source.Path)
	require.Equal(t, "context", cfg.Source.Column)
	require.Equal(t, 90*time.Second, cfg.Schedule.RetryDelay)
	require.Equal(t, 3, cfg.Schedule.Retries)
	require.Equal(t, DriverSQLite, cfg.Store.Driver)
}

func TestRepoDefaultConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yml"))
	require.NoError(t, err)

	_, res := NormalizeAndValidate(cfg)
	require.True(t, res.OK(), "%v", res.Errors)
	require.Equal(t, 15*time.Minute, cfg.Schedule.RetryDelay)
	require.Equal(t, ModeDaily, cfg.Schedule.Mode)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = " Postgres "
	cfg.Pipeline.ErrorPolicy = "SKIP"
	cfg.Pipeline.TransformWorkers = 0
	cfg.Schedule.At = "25:00"
	cfg.Staging.TransformedDir = cfg.Staging.ExtractedDir

	out, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	require.Equal(t, DriverPostgres, out.Store.Driver)
	require.Equal(t, PolicySkip, out.Pipeline.ErrorPolicy)
	require.Contains(t, res.Errors, "store.dsn is required when store.driver=postgres")
	require.Contains(t, res.Errors, "pipeline.transform_workers must be > 0")
	require.Contains(t, res.Errors, "staging.extracted_dir and staging.transformed_dir must differ")
	require.Contains(t, res.Errors, `schedule.at: invalid time of day "25:00" (want HH:MM)`)
}

func TestValidateWarnings(t *testing.T) {
	cfg := Default()
	cfg.Schedule.RetryDelay = 0
	cfg.Staging.CleanBeforeRun = false

	_, res := NormalizeAndValidate(cfg)
	require.True(t, res.OK())
	require.Len(t, res.Warnings, 2)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("07:30")
	require.NoError(t, err)
	require.Equal(t, 7, h)
	require.Equal(t, 30, m)

	_, _, err = ParseClock("7pm")
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("JOBETL_STORE_DRIVER", "postgres")
	t.Setenv("JOBETL_STORE_DSN", "postgres://etl@db/jobs")
	t.Setenv("JOBETL_TRANSFORM_WORKERS", "8")
	t.Setenv("JOBETL_RETRY_DELAY", "1m")
	t.Setenv("JOBETL_RETRIES", "not-a-number")

	cfg := Default()
	ApplyEnv(&cfg)
	require.Equal(t, "postgres", cfg.Store.Driver)
	require.Equal(t, "postgres://etl@db/jobs", cfg.Store.DSN)
	require.Equal(t, 8, cfg.Pipeline.TransformWorkers)
	require.Equal(t, time.Minute, cfg.Schedule.RetryDelay)
	require.Equal(t, 3, cfg.Schedule.Retries)
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yml")
	cfg := Default()
	cfg.Source.Path = "elsewhere.csv"

	require.NoError(t, SaveAtomic(path, cfg))
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	_, err = os.Stat(path + ".bak")
	require.NoError(t, err)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Source.Column = ""
	require.Error(t, SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg))
}

func TestEnsureUserConfig(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	path, err := EnsureUserConfig(dataDir, filepath.Join(dataDir, "missing.yml"))
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.App.DataDir = "/var/lib/jobetl"
	require.Equal(t, filepath.Join("/var/lib/jobetl", "jobs.db"), cfg.Resolve("jobs.db"))
	require.Equal(t, "/tmp/x.db", cfg.Resolve("/tmp/x.db"))
	require.Equal(t, "", cfg.Resolve(""))
}
