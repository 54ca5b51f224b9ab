package httpapi

import "net/http"

// NewMux returns the raw mux; main wraps it in middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{DB: d.DB}
	mux.Handle("/health", routes{
		http.MethodGet: hh.Health,
	})

	// Runs
	rh := RunsHandler{
		Runner:       d.Runner,
		Recorder:     d.Recorder,
		RunCtx:       d.RunCtx,
		TriggerLimit: d.TriggerLimit,
	}
	mux.Handle("/runs/status", routes{
		http.MethodGet: rh.Status,
	})
	mux.Handle("/runs", routes{
		http.MethodPost: rh.Trigger,
	})

	// Jobs
	jh := JobsHandler{DB: d.DB}
	mux.Handle("/jobs", routes{
		http.MethodGet: jh.List,
	})

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Runner:      d.Runner,
	}
	mux.Handle("/config", routes{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	})
	mux.Handle("/config/path", routes{
		http.MethodGet: ch.Path,
	})
	mux.Handle("/config/validate", routes{
		http.MethodGet: ch.Validate,
	})

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.Handle("/api/secrets/store", routes{
		http.MethodPost: sh.SetStorePassword,
	})

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.Handle("/events", routes{
		http.MethodGet: eh.ServeSSE,
	})

	return mux
}
