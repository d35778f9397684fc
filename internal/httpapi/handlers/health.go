package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health is the bare liveness probe; it skips the response envelope so
// load balancers can match on the exact body.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
