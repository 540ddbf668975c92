package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/listmatch/backend/config"
	"github.com/listmatch/backend/internal/observability"
)

// SetupRouter creates and configures the Gin router. metrics may be nil.
func SetupRouter(cfg *config.Config, handler *Handler, metrics *observability.Metrics, logger *slog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		listings := v1.Group("/listings")
		{
			listings.POST("/match", handler.MatchListing)
			listings.POST("/score", handler.ScoreListing)
		}

		v1.GET("/products", handler.ListProducts)
		v1.GET("/results", handler.Results)
	}

	return router
}
