package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
	"github.com/seidelmaycon/game-api/internal/domain/repository"
	"github.com/seidelmaycon/game-api/pkg/helpers"
	"github.com/seidelmaycon/game-api/pkg/response"
)

const (
	CtxUserKey   = "currentUser"
	CtxUserIDKey = "userID"

	msgUnauthorized = "Unauthorized"
)

// Auth requires "Authorization: Bearer <token>" naming an existing user and
// stores that user in the Gin context. Every rejection has the same body.
func Auth(jwt *helpers.JWTManager, users repository.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}
		userID, err := jwt.ParseAccessToken(token)
		if err != nil {
			unauthorized(c)
			return
		}
		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				helpers.LogError(logger, "auth user lookup failed", err, logrus.Fields{
					"user_id":    userID,
					"request_id": c.GetString("request_id"),
				})
			}
			unauthorized(c)
			return
		}

		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

// bearerToken extracts the token from a "Bearer <token>" header value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func unauthorized(c *gin.Context) {
	response.Abort(c, http.StatusUnauthorized, msgUnauthorized, []string{msgUnauthorized})
}
