// Package httpapi wires the gin engine: middleware chain, CORS policy
// and route table.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/techstore/support-api/internal/common"
	"github.com/techstore/support-api/internal/config"
	"github.com/techstore/support-api/internal/httpapi/handlers"
	"github.com/techstore/support-api/internal/httpapi/middleware"
	"github.com/techstore/support-api/internal/store/redisstore"
)

func NewRouter(cfg config.Config, h *handlers.Handler, rds *redisstore.Store) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(corsConfig(cfg))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/health", h.Health)

	r.POST("/chat", middleware.RateLimit(rds, int64(cfg.ChatRatePerMinute)), h.Chat)

	r.POST("/feedback", h.Feedback)
	r.POST("/evaluate", h.Evaluate)
	r.POST("/evaluate/async", h.EvaluateAsync)
	r.GET("/evaluate/jobs/:job_id", h.GetEvalJob)

	// The evaluation dashboard exposes raw customer queries, so it sits
	// behind operator JWTs.
	dash := r.Group("/evaluations")
	dash.Use(middleware.AuthRequired(cfg.JWTSecret))
	dash.GET("", h.ListEvaluations)
	dash.GET("/:conversation_id", h.GetEvaluation)

	return r
}

func corsConfig(cfg config.Config) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	return cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
		// Frontend preview deployments get a fresh subdomain per branch,
		// so the configured list is extended with the vercel.app suffix.
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin] || strings.HasSuffix(origin, ".vercel.app")
		},
	})
}
