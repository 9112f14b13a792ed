package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/openstax/rope/internal/api"
	"github.com/openstax/rope/internal/auth"
	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/course"
	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/moodle"
	"github.com/openstax/rope/internal/queue"
	"github.com/openstax/rope/internal/session"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)

	// Redis-backed session store
	sessions, err := session.NewRedisStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer sessions.Close()

	// SQS work queue producer
	sqsClient, err := queue.NewSQSClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to SQS")
	}
	producer := queue.NewProducer(sqsClient)

	// Moodle client and build request service
	moodleClient := moodle.NewClient(cfg)
	buildService := course.NewBuildService(repo, moodleClient, producer)

	verifier := auth.NewGoogleVerifier(cfg)
	handler := api.NewHandler(repo, buildService, moodleClient, sessions, verifier, cfg)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
