package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/quantum-tracker/internal/api/dto"
	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
	"github.com/gin-gonic/gin"
)

// ListBackends handles GET /api/backends
// Backends whose name cannot be read are left out
func (h *BackendHandler) ListBackends(c *gin.Context) {
	h.logger.Info("ListBackends called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	backends, err := h.provider.Backends(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list backends", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list backends",
		})
		return
	}

	records := make([]normalizer.BackendRecord, 0, len(backends))
	for _, b := range backends {
		rec := normalizer.NormalizeBackend(b)
		if rec.Name == "" {
			h.logger.Warn("Skipping backend without name")
			continue
		}
		records = append(records, rec)
	}

	c.JSON(http.StatusOK, dto.ListBackendsResponse{
		Backends: records,
		Count:    len(records),
	})
}
