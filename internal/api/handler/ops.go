package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapwitch/snapwitch/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pool      *pgxpool.Pool
}

// NewOpsHandler creates a new OpsHandler. pool may be nil when running on
// in-memory storage.
func NewOpsHandler(version, buildTime string, pool *pgxpool.Pool) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pool:      pool,
	}
}

type healthResponse struct {
	Status  string                 `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthCheck handles GET /healthz - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Time:   time.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /readyz - readiness check. Pings the database
// when one is configured.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.Ping(r.Context()); err != nil {
			response.JSON(w, r, http.StatusServiceUnavailable, healthResponse{
				Status: "unavailable",
				Time:   time.Now(),
				Details: map[string]interface{}{
					"database": err.Error(),
				},
			})
			return
		}
	}
	response.JSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Time:   time.Now(),
	})
}
