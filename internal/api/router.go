package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/modesense/tmd-backend-go/internal/config"
	"github.com/modesense/tmd-backend-go/internal/handler"
	"github.com/modesense/tmd-backend-go/internal/metrics"
	"github.com/modesense/tmd-backend-go/internal/middleware"
)

// SetupRouter wires middleware, API routes and the metrics endpoint
func SetupRouter(
	cfg *config.Config,
	inference *handler.InferenceHandler,
	vehicles *handler.VehicleHandler,
	collector *metrics.Collector,
	log *logrus.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Transport Mode Detection API is running",
		})
	})

	r.GET("/metrics", gin.WrapH(collector.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/inference", inference.Infer)
		api.GET("/modes", inference.GetModes)
		api.GET("/model/info", inference.GetModelInfo)

		api.GET("/vehicles/nearby", vehicles.GetNearby)
		// Feed ingestion writes the transit store and requires a token.
		api.POST("/vehicles", middleware.Auth(cfg.JWTSecret), vehicles.Ingest)
	}

	return r
}
