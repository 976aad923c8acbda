package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"catalogsync/internal/config"
	"catalogsync/internal/database"
	"catalogsync/internal/importer"
	"catalogsync/internal/logger"
	"catalogsync/internal/media"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
	"catalogsync/internal/storage"
	"catalogsync/internal/worker"
	"catalogsync/internal/worker/processors"
	"catalogsync/internal/worker/processors/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.App.LogLevel)
	defer logger.Sync()

	if !cfg.Kafka.Enabled() {
		logger.Fatal("KAFKA_BROKERS is empty, nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.URL, cfg.Database.LogLevel)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bucket, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open storage: %v", err)
	}

	catalog := repository.NewGormCatalog(db.DB)
	runner := importer.NewRunner(
		reconcile.NewEngine(catalog, reconcile.Options{Commerce: cfg.Import.Commerce}),
		media.NewImporter(catalog, bucket, media.Config{
			DataRoot:      cfg.Import.DataRoot,
			Prefix:        cfg.Import.MediaPrefix,
			ThumbnailSize: cfg.Storage.ThumbnailSize,
			MaxPixels:     cfg.Storage.ThumbnailMaxPixels,
		}),
		importer.WithLogger(logger),
	)

	// Initialize worker
	w := worker.New(worker.NewReader(cfg.Kafka), processors.NewFeedProcessor(runner, validation.New(cfg.Import.Commerce, logger), logger), logger)
	defer w.Stop()

	// Start worker
	logger.Info("Starting worker on topic %s...", cfg.Kafka.FeedTopic)
	if err := w.Start(ctx); err != nil {
		logger.Error("Worker stopped: %v", err)
	}
}
