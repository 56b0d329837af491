package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"roast-board/logger"
)

// RequestLoggingMiddleware logs one compact line per request. The router
// installs it instead of RequestTrace unless request tracing is enabled.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Log.Infof(
			"api_request method=%s path=%s status=%d duration_ms=%d",
			method,
			path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
		)
	}
}
