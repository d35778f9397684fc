package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/techstore/support-api/internal/common"
)

// Recovery converts panics into the standard error envelope instead of
// gin's default plain-text 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, r, debug.Stack())
				common.Fail(c, http.StatusInternalServerError, 50000, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
