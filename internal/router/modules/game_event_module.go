package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/seidelmaycon/game-api/internal/interface/http"
)

// GameEventModule exposes POST /api/user/game_events behind auth.
type GameEventModule struct {
	Handler *handlers.GameEventHandler
	Auth    gin.HandlerFunc
}

func NewGameEventModule(h *handlers.GameEventHandler, auth gin.HandlerFunc) *GameEventModule {
	return &GameEventModule{Handler: h, Auth: auth}
}

func (m *GameEventModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/user")
	auth.Use(m.Auth)
	{
		auth.POST("/game_events", m.Handler.Create)
	}
}
