// Package http provides the HTTP layer: link and preview handlers,
// health and probe endpoints, metrics collection, and middleware.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Health check states. Degraded is a warning, the service still works.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// poolWarnUtilization is the in-use fraction of the connection pool at
// which the database check reports degraded.
const poolWarnUtilization = 0.8

// HealthResponse is the JSON body returned by the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus describes the outcome of one health check.
type CheckStatus struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CachePinger reports whether the preview cache backend is reachable.
// The Redis-backed cache implements it; deployments running without a
// cache simply leave it nil.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports overall service health. The database is the
// only required dependency; the preview cache is an optimization, so a
// cache outage is reported as degraded and never fails the endpoint.
type HealthHandler struct {
	DB      *sql.DB
	Cache   CachePinger // optional
	Version string
}

// ServeHTTP answers 200 when the service can do its job and 503 when
// the database check fails.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		"database": h.checkDatabase(ctx),
	}
	if h.Cache != nil {
		checks["preview_cache"] = h.checkCache(ctx)
	}

	status, code := statusHealthy, http.StatusOK
	if checks["database"].Status == statusUnhealthy {
		status, code = statusUnhealthy, http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
	if err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// checkDatabase pings the database and inspects pool pressure. A pool
// running close to its limit is reported as degraded before requests
// start queueing on it.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: err.Error()}
	}

	stats := h.DB.Stats()
	details := map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// MaxOpenConnections of 0 means an unbounded pool; utilization is
	// meaningless then and the deployment should set a limit.
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections)
	details["utilization_percent"] = utilization * 100

	if utilization >= poolWarnUtilization {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}
	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkCache(ctx context.Context) CheckStatus {
	if err := h.Cache.Ping(ctx); err != nil {
		return CheckStatus{Status: statusDegraded, Message: err.Error()}
	}
	return CheckStatus{Status: statusHealthy}
}

// ReadyHandler is the readiness probe: traffic should only arrive once
// the database connection works.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler is the liveness probe. Responding at all is the check.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
