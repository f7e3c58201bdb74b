package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"vibesync/internal/pkg/logger"
)

// Logger 日志中间件
func Logger() gin.HandlerFunc {
	httpLog := logger.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := httpLog.Info()
		if status >= 400 {
			event = httpLog.Warn()
		}
		if status >= 500 {
			event = httpLog.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("user_id", c.GetString("user_id")).
			Int64("request_size", c.Request.ContentLength).
			Int("body_size", c.Writer.Size()).
			Bool("slow", latency > 30*time.Second).
			Msg("HTTP request")
	}
}
