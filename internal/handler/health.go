package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/osse101/idlegarden/internal/database"
)

const readinessTimeout = 2 * time.Second

// Store names reported by /readyz
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// HealthResponse is returned by both probes. Store and PingMS are only set
// by the readiness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store,omitempty"`
	PingMS  int64  `json:"ping_ms,omitempty"`
	Message string `json:"message,omitempty"`
}

// HandleHealthz provides a basic liveness check
// @Summary Liveness check
// @Description Returns OK while the process is serving requests
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// HandleReadyz reports whether settlements can be persisted. A nil pool
// means the authority runs on the in-memory store and is always ready.
// @Summary Readiness check
// @Description Pings the settlement store and reports its round trip
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func HandleReadyz(dbPool database.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dbPool == nil {
			respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: StoreMemory})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		start := time.Now()
		err := dbPool.Ping(ctx)
		elapsed := time.Since(start)
		if err != nil {
			slog.Error(LogMsgReadinessFailed, "error", err, "elapsed", elapsed)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "unavailable",
				Store:   StorePostgres,
				Message: "settlement store unreachable",
			})
			return
		}

		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: StorePostgres, PingMS: elapsed.Milliseconds()})
	}
}
