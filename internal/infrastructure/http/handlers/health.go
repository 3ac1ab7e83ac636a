package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dinnerarbiter/core/pkg/healthcheck"
)

// HealthHandler serves /healthz: liveness plus whatever dependency
// pingers were registered (database, cache).
type HealthHandler struct {
	check *healthcheck.HealthCheck
}

func NewHealthHandler(check *healthcheck.HealthCheck) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := h.check.Check(r.Context())
	status := http.StatusOK
	if resp.Status == healthcheck.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
