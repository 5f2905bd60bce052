// Package routes defines the HTTP routes for the CrewHub Chatbot Service.
package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/crewhub/chatbot-service/internal/api/handlers"
	"github.com/crewhub/chatbot-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler  *handlers.HealthHandler
	ChatHandler    *handlers.ChatHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	// Swagger UI
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes - all routes under /api/v1/chatbot-service
	v1 := r.Group("/api/v1/chatbot-service")
	{
		// Health check routes (no auth required)
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		// Apply auth middleware to protected API routes
		protected := v1.Group("")
		protected.Use(cfg.AuthMiddleware.Authenticate())

		// Business-scoped routes
		businesses := protected.Group("/businesses/:businessId")
		{
			chat := businesses.Group("/chat")
			{
				// Response engine
				chat.POST("/messages", cfg.ChatHandler.SendMessage)

				// Conversation history
				chat.GET("/history", cfg.ChatHandler.GetHistory)

				// Sessions
				chat.GET("/sessions", cfg.ChatHandler.ListSessions)
				chat.DELETE("/sessions/:sessionId", cfg.ChatHandler.ClearHistory)

				// Feedback
				chat.POST("/feedback", cfg.ChatHandler.RecordFeedback)
			}
		}
	}
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	// Apply global middleware
	r.Use(loggingMw.Logger())
	r.Use(loggingMw.RequestLogger())
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())

	// Setup routes
	Setup(r, cfg)
}
