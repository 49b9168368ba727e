package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/logging"
)

// HealthHandler reports service liveness and database connectivity.
type HealthHandler struct {
	DB Pinger
}

// Check handles GET /api/v1/healthcheck requests.
func (h HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			logging.FromContext(ctx).Error("health check database ping", "error", err)
			respondError(ctx, w, &apiError{Status: http.StatusServiceUnavailable, Message: "database unreachable"})
			return
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"status": "ok"}, "service is healthy")
}
