package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/pillar-academy-api/internal/service"
	"github.com/noah-isme/pillar-academy-api/pkg/response"
)

// SystemHandler serves liveness, readiness and the metrics snapshot.
type SystemHandler struct {
	db      *sqlx.DB
	redis   *redis.Client
	metrics *service.MetricsService
	version string
}

// NewSystemHandler creates a new handler.
func NewSystemHandler(db *sqlx.DB, rdb *redis.Client, metrics *service.MetricsService, version string) *SystemHandler {
	return &SystemHandler{db: db, redis: rdb, metrics: metrics, version: version}
}

// Health godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"time":    time.Now().UTC(),
	}, nil)
}

// Ready godoc
// @Summary Readiness probe
// @Description Verifies database and cache connectivity
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "cache": "ok"}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["cache"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	response.JSON(c, status, checks, nil)
}

// MetricsSnapshot godoc
// @Summary Runtime metrics snapshot
// @Description Admin view of request, cache and database counters
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /system/metrics [get]
func (h *SystemHandler) MetricsSnapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
