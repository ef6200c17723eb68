package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"dndinfo/internal/pkg/logger"
	"dndinfo/internal/pkg/response"
)

// ErrorLogger logs failed requests and recovers from panics.
func ErrorLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logRequestError(log, c, start, "panic", fmt.Sprintf("%v", recovered), "stack", string(debug.Stack()))
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}

			for _, err := range c.Errors {
				logRequestError(log, c, start, fmt.Sprintf("%v", err.Type), err.Error(), "meta", err.Meta)
			}
			if len(c.Errors) == 0 && c.Writer.Status() >= http.StatusInternalServerError {
				logRequestError(log, c, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status()))
			}
		}()

		c.Next()
	}
}

// RequestLogger writes one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"user_id", c.GetInt64("user_id"),
			"request_id", RequestIDFrom(c),
			"latency", time.Since(start),
		)
	}
}

func logRequestError(log *logger.Logger, c *gin.Context, start time.Time, errType string, message string, extra ...interface{}) {
	kv := []interface{}{
		"type", errType,
		"status", c.Writer.Status(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"client_ip", c.ClientIP(),
		"user_id", c.GetInt64("user_id"),
		"role", c.GetString("role"),
		"request_id", RequestIDFrom(c),
		"latency", time.Since(start),
		"error", message,
	}
	log.Error("request_error", append(kv, extra...)...)
}
