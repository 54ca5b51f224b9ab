package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"golang.org/x/time/rate"

	"jobpost-etl/internal/pipeline"
	"jobpost-etl/internal/runlog"
)

type RunsHandler struct {
	Runner       Runner
	Recorder     *runlog.Recorder
	RunCtx       context.Context
	TriggerLimit *rate.Limiter
}

func (h RunsHandler) Status(w http.ResponseWriter, r *http.Request) {
	last, err := h.Recorder.Latest()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "runlog_error", err.Error())
		return
	}
	writeOK(w, RunStatus{Running: h.Runner.Running(), Current: h.Runner.CurrentRun(), Last: last})
}

func (h RunsHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.TriggerLimit != nil && !h.TriggerLimit.Allow() {
		WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "run requested too soon after the last one")
		return
	}
	if h.Runner.Running() {
		writeRunError(w, r, http.StatusConflict, "already_running", "a run is already in progress", h.Runner.CurrentRun())
		return
	}

	ctx := h.RunCtx
	if ctx == nil {
		ctx = context.Background()
	}
	reqID := RequestIDFrom(r.Context())
	go func() {
		if _, err := h.Runner.Run(ctx, "http"); err != nil && !errors.Is(err, pipeline.ErrRunning) {
			log.Printf("level=error msg=\"run failed\" request_id=%s err=%v", reqID, err)
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
