package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"jobpost-etl/internal/config"
	"jobpost-etl/internal/pipeline"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	// Runner receives the pipeline options of every saved config.
	Runner Runner
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.CfgVal.Load().(config.Config))
}

// Put validates and saves the config, then hands its pipeline options to the
// runner so the next run uses them. A run already in progress is not touched.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var incoming config.Config
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "trailing data after config")
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
		return
	}
	opts, err := pipeline.OptionsFromConfig(saved)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_pipeline", err.Error())
		return
	}

	prev := h.CfgVal.Load().(config.Config)
	h.CfgVal.Store(saved)
	if h.Runner != nil {
		h.Runner.Reconfigure(opts)
	}

	restart := restartRequired(prev, saved)
	log.Printf("level=info msg=\"config saved\" request_id=%s restart_required=%v", RequestIDFrom(r.Context()), restart)
	writeOK(w, ConfigApplied{Config: saved, AppliesTo: "next_run", RestartRequired: restart})
}

// restartRequired names the keys that changed between prev and next but are
// only read when the process starts.
func restartRequired(prev, next config.Config) []string {
	keys := []string{}
	if prev.App.HTTPAddr != next.App.HTTPAddr {
		keys = append(keys, "app.http_addr")
	}
	if prev.Store != next.Store || prev.Resolve(prev.Store.Path) != next.Resolve(next.Store.Path) {
		keys = append(keys, "store")
	}
	if prev.Schedule.Mode != next.Schedule.Mode ||
		prev.Schedule.Every != next.Schedule.Every ||
		prev.Schedule.At != next.Schedule.At {
		keys = append(keys, "schedule")
	}
	if prev.Resolve(prev.Runlog.Dir) != next.Resolve(next.Runlog.Dir) {
		keys = append(keys, "runlog.dir")
	}
	return keys
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, err := filepath.Abs(h.UserCfgPath)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "path_error", err.Error())
		return
	}
	writeOK(w, map[string]string{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.CfgVal.Load().(config.Config))
	writeOK(w, vr)
}
