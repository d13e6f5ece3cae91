package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := gin.H{"provider": "ok"}
	ready := true

	if err := h.provider.Ping(ctx); err != nil {
		h.logger.Warn("Provider not ready", slog.String("error", err.Error()))
		checks["provider"] = err.Error()
		ready = false
	}

	if h.db != nil {
		checks["database"] = "ok"
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("Database not ready", slog.String("error", err.Error()))
			checks["database"] = err.Error()
			ready = false
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
