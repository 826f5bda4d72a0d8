package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/seidelmaycon/game-api/internal/interface/http"
)

// UserModule wires account routes.
// Public: POST /api/user
// Protected: GET /api/user
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/user", m.Handler.Create)
	rg.GET("/user", m.Auth, m.Handler.Show)
}
