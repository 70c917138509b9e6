package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-api/internal/handler"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// ErrorHandler logs errors attached with c.Error. When the handler attached an error
// without rendering anything, the last one is rendered in the standard envelope.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			appErr := apperrors.From(e.Err)
			event := logger.Warn()
			if appErr.HTTPStatus() >= 500 {
				event = logger.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", requestID).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", appErr.HTTPStatus()).
				Msg("request error")
		}

		if !c.Writer.Written() {
			handler.Error(c, c.Errors.Last().Err)
		}
	}
}
