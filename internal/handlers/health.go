package handlers

import (
	"context"
	"net/http"
	"time"

	apperrors "houseprice-heatmap/internal/errors"
	"houseprice-heatmap/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	cache Pinger
}

func NewHealthHandler(cache Pinger) *HealthHandler {
	return &HealthHandler{cache: cache}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			logger.GlobalLogger.Errorf("Cache ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": apperrors.MsgCacheUnavailable,
				"code":    apperrors.ErrCodeCacheUnavailable,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
