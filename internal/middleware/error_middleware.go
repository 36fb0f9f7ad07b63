package middleware

import (
	"journey-chat/internal/transport/httpdto"
	chat_errors "journey-chat/pkg/errors"
	"journey-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Server-side failures are logged and their details are not returned.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := chat_errors.HTTPStatus(err)
		message := err.Error()
		if status >= 500 {
			if l != nil {
				l.WithContext(c.Request.Context()).Error("request failed", zap.Error(err))
			}
			message = "internal server error"
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(status, httpdto.NewErrorResponse(message, chat_errors.Code(err)))
	}
}
