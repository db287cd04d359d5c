package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garnizeh/pereval/pkg/repository"
)

type SystemHandler struct {
	store repository.Pinger
}

func NewSystemHandler(store repository.Pinger) *SystemHandler {
	return &SystemHandler{store: store}
}

// HealthHandler reports ok only while the store answers a ping.
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logFailure(r, http.StatusServiceUnavailable, err)
		writeJSON(w, map[string]string{"status": "unavailable", "service": "pereval", "error": err.Error()}, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok", "service": "pereval"}, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": version, "buildTime": buildTime}, http.StatusOK)
	}
}

func (h *SystemHandler) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
