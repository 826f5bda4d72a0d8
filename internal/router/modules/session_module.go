package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/seidelmaycon/game-api/internal/interface/http"
)

// SessionModule exposes POST /api/sessions (public).
type SessionModule struct {
	Handler *handlers.SessionHandler
}

func NewSessionModule(h *handlers.SessionHandler) *SessionModule {
	return &SessionModule{Handler: h}
}

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", m.Handler.Create)
}
