package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/seidelmaycon/game-api/internal/interface/http"
)

// HealthModule exposes GET /up; register it at the engine root.
type HealthModule struct {
	Handler *handlers.HealthHandler
}

func NewHealthModule(h *handlers.HealthHandler) *HealthModule {
	return &HealthModule{Handler: h}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/up", m.Handler.Up)
}
