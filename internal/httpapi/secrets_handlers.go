package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobpost-etl/internal/config"
	"jobpost-etl/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setStorePasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetStorePassword(w http.ResponseWriter, r *http.Request) {
	var req setStorePasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetStorePassword(cfg.Store.PasswordKeyringAccount, req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
