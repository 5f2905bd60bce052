// Package main is the entry point for the CrewHub Chatbot Service.
// @title CrewHub Chatbot Service API
// @version 1.0
// @description Multi-tenant rule-based chatbot backend for field-service businesses
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/crewhub/chatbot-service
// @contact.email support@crewhub.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Per-business API key authentication
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/crewhub/chatbot-service/docs"
	"github.com/crewhub/chatbot-service/internal/api/handlers"
	"github.com/crewhub/chatbot-service/internal/api/middleware"
	"github.com/crewhub/chatbot-service/internal/api/routes"
	"github.com/crewhub/chatbot-service/internal/config"
	"github.com/crewhub/chatbot-service/internal/core/cache"
	"github.com/crewhub/chatbot-service/internal/core/docdb"
	rediscache "github.com/crewhub/chatbot-service/internal/infrastructure/cache/redis"
	"github.com/crewhub/chatbot-service/internal/infrastructure/docdb/mongodb"
	"github.com/crewhub/chatbot-service/internal/services/chatbot"
	"github.com/crewhub/chatbot-service/internal/services/directory"
	"github.com/crewhub/chatbot-service/internal/services/knowledge"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Log)

	ctx := context.Background()

	// Initialize cache client using factory pattern
	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache client")
	}
	defer cacheClient.Close()

	// Initialize document db client using factory pattern
	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	// Ensure database indexes
	if err := docDBClient.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// Initialize directory service
	directoryService, err := directory.NewService(&directory.Config{
		DocDBClient: docDBClient,
		CacheClient: cacheClient,
		TTL:         cfg.Cache.TTL,
		Logger:      log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize directory service")
	}

	// Initialize knowledge service
	knowledgeService, err := knowledge.NewService(&knowledge.Config{
		DocDBClient: docDBClient,
		Logger:      log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize knowledge service")
	}

	// Initialize chatbot service
	chatbotService, err := chatbot.NewService(&chatbot.Config{
		DocDBClient:        docDBClient,
		Knowledge:          knowledgeService,
		Directory:          directoryService,
		HistoryLimit:       cfg.Chatbot.HistoryLimit,
		FeedbackSampleRate: cfg.Chatbot.FeedbackSampleRate,
		PlatformName:       cfg.Chatbot.PlatformName,
		Logger:             log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chatbot service")
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Setup router
	router := setupRouter(cacheClient, docDBClient, directoryService, chatbotService)

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (cache.Client, error) {
	return rediscache.NewCache(rediscache.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Password:   cfg.Password,
		DB:         cfg.DB,
		DefaultTTL: cfg.TTL,
	})
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	return mongodb.NewClient(ctx, &mongodb.ClientConfig{
		URI:          cfg.URI,
		DatabaseName: cfg.Database,
	})
}

// setupRouter creates and configures the Gin router.
func setupRouter(cacheClient cache.Client, docDBClient docdb.Client, directoryService directory.Service, chatbotService chatbot.Service) *gin.Engine {
	router := gin.New()

	// Create middleware
	loggingMw := middleware.NewLoggingMiddleware()
	errorMw := middleware.NewErrorMiddleware()
	authMw := middleware.NewAuthMiddleware(directoryService)
	corsCfg := middleware.DefaultCORSConfig()

	router.Use(middleware.NewCORSMiddleware(corsCfg))

	// Create handlers
	healthHandler := handlers.NewHealthHandler(cacheClient, docDBClient)
	chatHandler := handlers.NewChatHandler(chatbotService)

	// Setup routes
	routesCfg := &routes.Config{
		HealthHandler:  healthHandler,
		ChatHandler:    chatHandler,
		AuthMiddleware: authMw,
	}

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw)

	return router
}
