// Package httpkit holds the gin plumbing shared by every handler.
package httpkit

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tourdesk/internal/apperr"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// HandleError writes err as {"error": message}. Typed errors keep their
// status and client message; anything else becomes a generic 500 and is logged.
func HandleError(c *gin.Context, log *logger.Logger, err error) bool {
	if err == nil {
		return false
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindUnknown {
			log.WithContext(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		}
		Error(c, appErr.HTTPStatus(), appErr.Message)
		return true
	}

	log.WithContext(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	Error(c, http.StatusInternalServerError, "Internal server error")
	return true
}
