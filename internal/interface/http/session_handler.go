package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/seidelmaycon/game-api/internal/application"
	"github.com/seidelmaycon/game-api/pkg/response"
)

type SessionHandler struct {
	Svc    *userapp.UserService
	Logger *logrus.Logger
}

func NewSessionHandler(svc *userapp.UserService, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{Svc: svc, Logger: logger}
}

// Create exchanges credentials for a bearer token. POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.Svc.CreateSession(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userapp.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", []string{"Invalid email or password"})
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"token": sess.Token}, "session created", map[string]any{"expires_at": sess.ExpiresAt})
}
