package httpapi

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"

	"jobpost-etl/internal/config"
	"jobpost-etl/internal/events"
	"jobpost-etl/internal/pipeline"
	"jobpost-etl/internal/runlog"
	"jobpost-etl/internal/store"
)

// Runner is the part of pipeline.Runner the API drives.
type Runner interface {
	Run(ctx context.Context, trigger string) (*pipeline.Report, error)
	Running() bool
	CurrentRun() string
	Reconfigure(opts pipeline.Options)
}

type Deps struct {
	DB *store.DB

	Hub *events.Hub

	Runner   Runner
	Recorder *runlog.Recorder
	// RunCtx bounds runs started over HTTP; they outlive the request.
	RunCtx context.Context
	// TriggerLimit throttles POST /runs. Nil means unlimited.
	TriggerLimit *rate.Limiter

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
