package middleware

import (
	apperrors "houseprice-heatmap/internal/errors"
	"houseprice-heatmap/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns the last error a handler attached into a JSON body
// {"message", "code"}. 5xx bodies always carry "Internal Server Error".
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperrors.MapError(c.Errors.Last().Err)

		logger.GlobalLogger.Errorf("Request failed: path=%s, method=%s, client_ip=%s, request_id=%s, status=%d, error=%s",
			c.Request.URL.Path,
			c.Request.Method,
			c.ClientIP(),
			c.GetString(RequestIDKey),
			appErr.HTTPStatus,
			appErr.TechnicalMessage)

		c.JSON(appErr.HTTPStatus, gin.H{
			"message": appErr.UserMessage,
			"code":    appErr.Code,
		})
	}
}
