package proxy

import (
	"net/http"

	"github.com/yarenty/modelmux/internal/metrics"
)

// HealthResponse is the body served at GET /health.
type HealthResponse struct {
	Status  string           `json:"status"`
	Metrics metrics.Snapshot `json:"metrics"`
}

// HealthHandler reports liveness plus a snapshot of the running counters.
type HealthHandler struct {
	Metrics *metrics.Metrics
}

func NewHealthHandler(m *metrics.Metrics) *HealthHandler {
	return &HealthHandler{Metrics: m}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, HealthResponse{
		Status:  "ok",
		Metrics: h.Metrics.Snapshot(),
	}, http.StatusOK)
}
