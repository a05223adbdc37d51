package http

import (
	"github.com/gin-gonic/gin"

	"github.com/stylistai/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(UserIDMiddleware())
	{
		ai := v1.Group("/ai")
		{
			ai.POST("/find-similar", handler.FindSimilar)
			ai.POST("/build-outfits", handler.BuildOutfits)
			ai.POST("/re-analyze/:id", handler.Reanalyze)
			ai.DELETE("/clear-analysis/:id", handler.ClearAnalysis)
			ai.GET("/analyses", handler.ListAnalyses)
		}

		wardrobe := v1.Group("/wardrobe")
		{
			wardrobe.POST("/items", handler.CreateItem)
			wardrobe.GET("/items", handler.ListItems)
			wardrobe.GET("/items/:id", handler.GetItem)
		}
	}

	return router
}
