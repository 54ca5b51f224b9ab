package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strings"
)

// APIError is the body of every non-2xx JSON response. RunID is set when the
// error concerns a pipeline run, so a client can follow it on /events.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
		RunID     string `json:"run_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("level=error msg=\"encode response\" err=%v", err)
	}
}

func writeOK(w http.ResponseWriter, v any) { WriteJSON(w, http.StatusOK, v) }

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeRunError(w, r, status, code, message, "")
}

func writeRunError(w http.ResponseWriter, r *http.Request, status int, code, message, runID string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Error.RunID = runID
	WriteJSON(w, status, e)
}

// routes dispatches on method and answers anything else with 405 and an
// Allow header listing what the path accepts.
type routes map[string]http.HandlerFunc

func (m routes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := m[r.Method]; ok {
		h(w, r)
		return
	}
	allowed := make([]string, 0, len(m))
	for method := range m {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not supported on "+r.URL.Path)
}
