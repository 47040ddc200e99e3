package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/analyzer"
	"beauty-api/internal/service"
)

// Pinger es lo mínimo que se necesita de la base para /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusHandler struct {
	logger  *zap.Logger
	db      Pinger
	monitor *service.BackendMonitor
	client  analyzer.Client
	started time.Time
}

func NewStatusHandler(logger *zap.Logger, db Pinger, monitor *service.BackendMonitor, client analyzer.Client) *StatusHandler {
	return &StatusHandler{logger: logger, db: db, monitor: monitor, client: client, started: time.Now()}
}

// Health maneja GET /health.
func (h *StatusHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"database":       "ok",
	}
	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err))
			body["status"] = "degraded"
			body["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, body)
}

// BackendStatus maneja GET /backend/status. Sondea si todavía no hubo chequeo.
func (h *StatusHandler) BackendStatus(c *gin.Context) {
	snap := h.monitor.Snapshot()
	if snap.CheckedAt.IsZero() {
		snap = h.monitor.Probe(c.Request.Context())
	}
	c.JSON(http.StatusOK, snap)
}

// Celebrities maneja GET /celebrities.
func (h *StatusHandler) Celebrities(c *gin.Context) {
	list, err := h.client.Celebrities(c.Request.Context())
	if err != nil {
		h.logger.Warn("celebrity list failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis backend unavailable"})
		return
	}
	c.JSON(http.StatusOK, list)
}
