package httpapi

import (
	"net/http"

	"jobpost-etl/internal/store"
)

type HealthHandler struct {
	DB *store.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ready := h.DB != nil && h.DB.SchemaReady(r.Context())
	writeOK(w, map[string]any{
		"ok":           true,
		"schema_ready": ready,
	})
}
