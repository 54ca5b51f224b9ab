// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PolicySkip = "skip"
	PolicyFail = "fail"

	ModeOnce     = "once"
	ModeInterval = "interval"
	ModeDaily    = "daily"
)

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir"`
		HTTPAddr string `yaml:"http_addr"`
	} `yaml:"app"`

	Source struct {
		Path   string `yaml:"path"`
		Column string `yaml:"column"`
		Sheet  string `yaml:"sheet"` // xlsx only; empty = first sheet
		Dedupe bool   `yaml:"dedupe"`
	} `yaml:"source"`

	Staging struct {
		ExtractedDir   string `yaml:"extracted_dir"`
		TransformedDir string `yaml:"transformed_dir"`
		CleanBeforeRun bool   `yaml:"clean_before_run"`
	} `yaml:"staging"`

	Store struct {
		Driver                 string `yaml:"driver"`
		Path                   string `yaml:"path"`
		DSN                    string `yaml:"dsn"`
		PasswordKeyringAccount string `yaml:"password_keyring_account"`
	} `yaml:"store"`

	Pipeline struct {
		TransformWorkers int    `yaml:"transform_workers"`
		ErrorPolicy      string `yaml:"error_policy"`
	} `yaml:"pipeline"`

	Schedule struct {
		Mode       string        `yaml:"mode"`
		Every      time.Duration `yaml:"every"`
		At         string        `yaml:"at"`
		Retries    int           `yaml:"retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"schedule"`

	Runlog struct {
		Dir string `yaml:"dir"`
	} `yaml:"runlog"`
}

// Default is the configuration used for any key the file leaves out.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.Source.Path = filepath.Join("source", "jobs.csv")
	cfg.Source.Column = "context"
	cfg.Staging.ExtractedDir = filepath.Join("staging", "extracted")
	cfg.Staging.TransformedDir = filepath.Join("staging", "transformed")
	cfg.Staging.CleanBeforeRun = true
	cfg.Store.Driver = DriverSQLite
	cfg.Store.Path = "jobs.db"
	cfg.Pipeline.TransformWorkers = 4
	cfg.Pipeline.ErrorPolicy = PolicySkip
	cfg.Schedule.Mode = ModeDaily
	cfg.Schedule.Every = 24 * time.Hour
	cfg.Schedule.At = "00:00"
	cfg.Schedule.Retries = 3
	cfg.Schedule.RetryDelay = 15 * time.Minute
	cfg.Runlog.Dir = "runs"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Resolve anchors a relative path at the data dir.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}
