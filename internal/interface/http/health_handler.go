package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/internal/domain/repository"
	"github.com/seidelmaycon/game-api/pkg/helpers"
	"github.com/seidelmaycon/game-api/pkg/response"
)

type HealthHandler struct {
	Store  repository.Pinger
	Logger *logrus.Logger
}

func NewHealthHandler(store repository.Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Store: store, Logger: logger}
}

// Up reports 200 when the store answers a ping, 503 otherwise. GET /up
func (h *HealthHandler) Up(c *gin.Context) {
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			helpers.LogError(h.Logger, "health check failed", err, nil)
			response.Error[any](c, http.StatusServiceUnavailable, "unavailable", []string{"database unavailable"})
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "up", nil)
}
