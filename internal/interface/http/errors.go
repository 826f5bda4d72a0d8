package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/pkg/helpers"
	"github.com/seidelmaycon/game-api/pkg/response"
	"github.com/seidelmaycon/game-api/pkg/validation"
)

const msgInternal = "internal server error"

// badRequest reports a payload that could not be bound.
func badRequest(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToMessages(err))
}

// unprocessable reports field validation failures as full messages.
func unprocessable(c *gin.Context, verrs *validation.Errors) {
	response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", verrs.FullMessages())
}

// writeError renders *validation.Errors as 422 and anything else as a logged 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		unprocessable(c, verrs)
		return
	}
	helpers.LogError(logger, "request failed", err, logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	})
	response.Error[any](c, http.StatusInternalServerError, msgInternal, []string{msgInternal})
}
