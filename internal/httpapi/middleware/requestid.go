package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/techstore/support-api/internal/common"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or assigns a fresh ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			generated, err := common.NewULID()
			if err == nil {
				id = generated
			}
		}
		if id != "" {
			c.Set("request_id", id)
			c.Header(requestIDHeader, id)
		}
		c.Next()
	}
}
