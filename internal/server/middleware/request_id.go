package middleware

import (
	"github.com/gin-gonic/gin"

	"vibesync/internal/pkg/id"
)

const (
	// RequestIDHeader 请求ID响应头
	RequestIDHeader = "X-Request-Id"
	// RequestIDKey gin context 中的 key
	RequestIDKey = "request_id"
)

// RequestID 透传或生成请求ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = id.New()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
