package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Keys used to correlate one request across handlers and log lines.
const (
	HeaderRequestID  = "X-Request-Id"
	ContextRequestID = "request_id"
)

// RequestID propagates the caller's X-Request-Id, or assigns a fresh
// one, so sync and stream requests alike can be traced through logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
