package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalogsync/internal/api"
	"catalogsync/internal/config"
	"catalogsync/internal/database"
	"catalogsync/internal/importer"
	"catalogsync/internal/logger"
	"catalogsync/internal/media"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
	"catalogsync/internal/storage"
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

	// Initialize database
	db, err := database.New(cfg.Database.URL, cfg.Database.LogLevel)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bucket, err := storage.Open(context.Background(), cfg.Storage)
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
		importer.WithRuns(repository.NewGormRuns(db.DB)),
		importer.WithLogger(logger),
	)

	// Initialize API server
	server := api.New(cfg, logger, db, runner)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
