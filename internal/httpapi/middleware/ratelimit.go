package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/techstore/support-api/internal/common"
	"github.com/techstore/support-api/internal/store/redisstore"
)

// RateLimit enforces a per-client-IP fixed window on the chat endpoint.
// A nil store or non-positive limit disables the limiter, and Redis
// errors fail open so a cache outage never takes chat down with it.
func RateLimit(rds *redisstore.Store, perMinute int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rds == nil || perMinute <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:chat:" + c.ClientIP()
		ok, err := rds.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil {
			log.Printf("[RATELIMIT] redis error, allowing request: %v", err)
			c.Next()
			return
		}
		if !ok {
			common.Fail(c, http.StatusTooManyRequests, 42900, "too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
