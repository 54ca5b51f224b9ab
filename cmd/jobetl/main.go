package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"jobpost-etl/internal/config"
	"jobpost-etl/internal/events"
	"jobpost-etl/internal/httpapi"
	"jobpost-etl/internal/pipeline"
	"jobpost-etl/internal/runlog"
	"jobpost-etl/internal/scheduler"
	"jobpost-etl/internal/secrets"
	"jobpost-etl/internal/store"
)

func main() {
	var (
		cfgFlag  = flag.String("config", "", "config file (default: <data-dir>/config.yml, bootstrapped from config/config.yml)")
		dataFlag = flag.String("data-dir", "", "data directory (overrides JOBETL_DATA_DIR)")
		modeFlag = flag.String("mode", "", "once, interval or daily (overrides schedule.mode)")
		serve    = flag.Bool("serve", false, "keep the HTTP API up after a once run")
	)
	flag.Parse()

	config.LoadEnvFile()

	dataDir := *dataFlag
	if dataDir == "" {
		dataDir = os.Getenv("JOBETL_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	userCfgPath := *cfgFlag
	if userCfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
		userCfgPath = p
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.ApplyEnv(&cfg)
		if *dataFlag != "" {
			cfg.App.DataDir = *dataFlag
		}
		if !filepath.IsAbs(cfg.App.DataDir) {
			cfg.App.DataDir = filepath.Join(filepath.Dir(userCfgPath), cfg.App.DataDir)
		}
		if *modeFlag != "" {
			cfg.Schedule.Mode = *modeFlag
		}
		cfg, res := config.NormalizeAndValidate(cfg)
		for _, w := range res.Warnings {
			log.Printf("[config] warning: %s", w)
		}
		if !res.OK() {
			return cfg, config.Validate(cfg)
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	db, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}
	defer db.Close()

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	hub := events.NewHub()
	recorder := runlog.NewRecorder(cfg.Resolve(cfg.Runlog.Dir))
	runner := pipeline.New(opts, db, recorder, hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if cfg.App.HTTPAddr != "" && (cfg.Schedule.Mode != config.ModeOnce || *serve) {
		srv, err = startHTTP(ctx, cfg.App.HTTPAddr, httpapi.Deps{
			DB:           db,
			Hub:          hub,
			Runner:       runner,
			Recorder:     recorder,
			RunCtx:       ctx,
			TriggerLimit: rate.NewLimiter(rate.Every(time.Minute), 1),
			CfgVal:       &cfgVal,
			UserCfgPath:  userCfgPath,
			LoadCfg:      loadCfg,
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	task := func(ctx context.Context) error {
		_, err := runner.Run(ctx, "schedule")
		return err
	}

	exit := 0
	switch cfg.Schedule.Mode {
	case config.ModeInterval:
		log.Printf("[jobetl] running every %s", cfg.Schedule.Every)
		scheduler.Every(ctx, cfg.Schedule.Every, "pipeline", task)
	case config.ModeDaily:
		hour, minute, err := config.ParseClock(cfg.Schedule.At)
		if err != nil {
			log.Fatal(err)
		}
		scheduler.Daily(ctx, hour, minute, "pipeline", task)
	default:
		if _, err := runner.Run(ctx, "cli"); err != nil {
			log.Printf("[jobetl] run failed: %v", err)
			exit = 1
		}
		if srv != nil {
			<-ctx.Done()
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	if exit != 0 {
		db.Close()
		os.Exit(exit)
	}
}

func openStore(cfg config.Config) (*store.DB, error) {
	if cfg.Store.Driver == config.DriverPostgres {
		dsn, err := secrets.StoreDSN(cfg)
		if err != nil {
			return nil, err
		}
		return store.Open(store.Postgres, dsn)
	}
	return store.Open(store.SQLite, cfg.Resolve(cfg.Store.Path))
}

func startHTTP(ctx context.Context, addr string, d httpapi.Deps) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log.Printf("jobetl listening on http://%s", addr)

	srv := &http.Server{
		Handler:           httpapi.Chain(httpapi.NewMux(d), httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("level=error msg=\"http serve\" err=%v", err)
		}
	}()
	return srv, nil
}
