package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/seidelmaycon/game-api/internal/application"
	"github.com/seidelmaycon/game-api/internal/interface/middleware"
	"github.com/seidelmaycon/game-api/pkg/response"
)

type UserHandler struct {
	Svc    *userapp.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type statsResponse struct {
	TotalGamesPlayed int64 `json:"total_games_played"`
}

type userResponse struct {
	ID                 int64         `json:"id"`
	Email              string        `json:"email"`
	Stats              statsResponse `json:"stats"`
	SubscriptionStatus string        `json:"subscription_status"`
}

// Create registers a user. POST /api/user
func (h *UserHandler) Create(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, userapp.ErrRequiredFields) {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", []string{"Email and password are required"})
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusCreated, nil, "User created successfully", nil)
}

// Show returns the authenticated user's profile. GET /api/user
func (h *UserHandler) Show(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "Unauthorized", []string{"Unauthorized"})
		return
	}
	p, err := h.Svc.GetProfile(c.Request.Context(), u)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user": userResponse{
			ID:                 p.User.ID,
			Email:              p.User.Email,
			Stats:              statsResponse{TotalGamesPlayed: p.TotalGamesPlayed},
			SubscriptionStatus: string(p.SubscriptionStatus),
		},
	}, "profile", nil)
}
