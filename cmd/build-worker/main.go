package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/ledger"
	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/moodle"
	"github.com/openstax/rope/internal/queue"
	"github.com/openstax/rope/internal/storage"
	"github.com/openstax/rope/internal/worker"
)

func main() {
	daemonize := flag.Bool("daemonize", false, "keep polling instead of draining one batch")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Bool("daemonize", *daemonize).Msg("Starting build worker")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)

	// SQS work queue
	sqsClient, err := queue.NewSQSClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to SQS")
	}

	// Completion ledger in object storage
	store, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}
	completionLedger := ledger.New(store, cfg.Storage.S3.LedgerKey)

	// Moodle client with cached role lookups
	moodleClient := moodle.NewClient(cfg)
	roles := moodle.NewRoleCache(moodleClient, cfg.Moodle.RoleCacheTTL)

	processor := worker.NewBuildProcessor(cfg, repo, moodleClient, roles, completionLedger, sqsClient)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- processor.Run(ctx, *daemonize)
	}()

	// Wait for interrupt signal or single-shot completion
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutting down build worker...")
		cancel()
		<-done
	case err := <-done:
		if err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Build worker failed")
		}
	}

	log.Info().Msg("Build worker exited")
}
