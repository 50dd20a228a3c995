package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/upfall/sensor-backend-go/internal/config"
	"github.com/upfall/sensor-backend-go/internal/handler"
	"github.com/upfall/sensor-backend-go/internal/middleware"
)

// SetupRouter wires the query API
func SetupRouter(cfg *config.Config, windowHandler *handler.WindowHandler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(logger))
	r.Use(gin.Recovery())

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
			"message": "Sensor Windows API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		windows := api.Group("/windows")
		{
			windows.GET("", windowHandler.ListWindows)
			windows.GET("/summary", windowHandler.GetSummary)
			windows.POST("/rebuild",
				middleware.JWTAuth(cfg.JWTSecret),
				middleware.RateLimit(2, time.Minute),
				windowHandler.Rebuild)
		}
	}

	return r
}
