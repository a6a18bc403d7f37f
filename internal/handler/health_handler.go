package handler

import (
	"context"
	"net/http"
	"time"

	"thesis-manager/pkg/apierror"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			writeError(w, apierror.Wrap(err, "UNAVAILABLE", name+" is unreachable", http.StatusServiceUnavailable))
			return
		}
		status[name] = "ok"
	}

	writeSuccess(w, http.StatusOK, status)
}
