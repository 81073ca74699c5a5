package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/SergeiKhy/visit-tracker/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthHandler struct {
	db      *repository.PostgresDB
	logger  *zap.Logger
	version string
	// startTime фиксируется один раз при старте процесса и больше не меняется
	startTime time.Time
}

func NewHealthHandler(db *repository.PostgresDB, logger *zap.Logger, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		db:        db,
		logger:    logger,
		version:   version,
		startTime: startTime,
	}
}

type healthData struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Database      string  `json:"database"`
}

// Check godoc
// @Summary Health check
// @Description Verify API liveness and database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	data := healthData{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Database:      "connected",
	}

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("Health check: database unreachable", zap.Error(err))
		data.Status = "unhealthy"
		data.Database = "disconnected"
		respondError(c, http.StatusServiceUnavailable, "Service unhealthy", nil, data)
		return
	}

	respondSuccess(c, http.StatusOK, "Service healthy", data)
}

// Root godoc
// @Summary API information
// @Description Service name, version and useful endpoints
// @Tags root
// @Produce json
// @Success 200 {object} Response
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	respondSuccess(c, http.StatusOK, "Success", gin.H{
		"message": "Chrome History Sidepanel API",
		"version": h.version,
		"docs":    "/",
		"health":  "/health",
	})
}
