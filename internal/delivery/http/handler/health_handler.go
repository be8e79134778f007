package handler

import (
	"context"
	"net/http"
	"time"

	"pubudu-echanneling/pkg/response"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health reports 503 when any dependency fails to answer within two seconds.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		response.JSON(w, http.StatusServiceUnavailable, response.Response{
			Success: false,
			Message: "Service unavailable",
			Data:    status,
		})
		return
	}
	response.Success(w, http.StatusOK, "ok", status)
}
