package api

import (
	"context"
	"net/http"
	"time"

	"github.com/orientis/orientis/internal/health"
)

// HealthHandlers provides health and readiness check endpoints for
// Kubernetes probes.
type HealthHandlers struct {
	dbChecker    health.Checker
	redisChecker health.Checker
}

// HealthHandlersConfig configures the health check handlers. Checkers are
// optional; a nil checker is reported as skipped.
type HealthHandlersConfig struct {
	DBChecker    health.Checker
	RedisChecker health.Checker
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	return &HealthHandlers{
		dbChecker:    config.DBChecker,
		redisChecker: config.RedisChecker,
	}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health (liveness probe).
// If we can respond at all, the process is alive.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": "ok"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	WriteJSON(w, http.StatusOK, response)
}

// Ready handles GET /ready (readiness probe). It verifies the configured
// dependencies and returns 503 when any of them fails.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "ready",
		Checks:    make(map[string]string),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	check := func(name string, checker health.Checker) {
		if checker == nil {
			response.Checks[name] = "skipped"
			return
		}
		if err := checker.HealthCheck(ctx); err != nil {
			response.Checks[name] = "failed: " + err.Error()
			response.Status = "not_ready"
			status = http.StatusServiceUnavailable
			return
		}
		response.Checks[name] = "ok"
	}

	check("database", h.dbChecker)
	check("redis", h.redisChecker)

	WriteJSON(w, status, response)
}
