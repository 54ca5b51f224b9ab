package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFile reads .env.local from the working directory, or its parent,
// into the process environment. Variables already set win.
func LoadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// ApplyEnv overrides file values with JOBETL_* environment variables.
func ApplyEnv(cfg *Config) {
	setString(&cfg.App.DataDir, "JOBETL_DATA_DIR")
	setString(&cfg.App.HTTPAddr, "JOBETL_HTTP_ADDR")
	setString(&cfg.Source.Path, "JOBETL_SOURCE_PATH")
	setString(&cfg.Source.Column, "JOBETL_SOURCE_COLUMN")
	setString(&cfg.Store.Driver, "JOBETL_STORE_DRIVER")
	setString(&cfg.Store.Path, "JOBETL_STORE_PATH")
	setString(&cfg.Store.DSN, "JOBETL_STORE_DSN")
	setString(&cfg.Pipeline.ErrorPolicy, "JOBETL_ERROR_POLICY")
	setInt(&cfg.Pipeline.TransformWorkers, "JOBETL_TRANSFORM_WORKERS")
	setString(&cfg.Schedule.Mode, "JOBETL_SCHEDULE_MODE")
	setInt(&cfg.Schedule.Retries, "JOBETL_RETRIES")
	setDuration(&cfg.Schedule.RetryDelay, "JOBETL_RETRY_DELAY")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
