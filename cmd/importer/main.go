package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"catalogsync/internal/config"
	"catalogsync/internal/database"
	"catalogsync/internal/feed"
	"catalogsync/internal/importer"
	"catalogsync/internal/logger"
	"catalogsync/internal/media"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
	"catalogsync/internal/storage"
	"catalogsync/internal/worker/processors/validation"
)

func main() {
	os.Exit(run())
}

func run() int {
	token := flag.String("token", "", "shared import token, must match IMPORT_TOKEN when set")
	feedPath := flag.String("feed", "", "feed file (default IMPORT_DATA_ROOT/IMPORT_FEED_FILE)")
	dataRoot := flag.String("data-root", "", "directory local image paths are resolved against")
	dryRun := flag.Bool("dry-run", false, "reconcile against an in-memory catalog and discard media")
	diagnose := flag.Bool("diagnose", false, "report how every thumbnail path resolves, change nothing")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		return 2
	}
	if cfg.Import.Token != "" && *token != cfg.Import.Token {
		fmt.Fprintln(os.Stderr, "Forbidden: invalid token")
		return 1
	}
	if *dataRoot != "" {
		cfg.Import.DataRoot = *dataRoot
	}
	path := cfg.Import.FeedPath()
	if *feedPath != "" {
		path = *feedPath
	}

	// Initialize logger
	log := logger.New(cfg.App.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *diagnose {
		return diagnoseFeed(path, cfg.Import.DataRoot, validation.New(cfg.Import.Commerce, log))
	}

	var (
		catalog repository.CatalogRepository
		bucket  storage.Bucket
		opts    = []importer.Option{importer.WithTrace(os.Stdout), importer.WithLogger(log)}
	)
	if *dryRun {
		scratch, err := os.MkdirTemp("", "catalog-dry-run-")
		if err != nil {
			log.Error("Failed to create scratch directory: %v", err)
			return 2
		}
		defer os.RemoveAll(scratch)

		catalog = repository.NewMemoryCatalog()
		if bucket, err = storage.NewLocalBucket(scratch, "/dry-run"); err != nil {
			log.Error("Failed to open scratch bucket: %v", err)
			return 2
		}
	} else {
		db, err := database.New(cfg.Database.URL, cfg.Database.LogLevel)
		if err != nil {
			log.Error("Failed to connect to database: %v", err)
			return 2
		}
		defer db.Close()

		catalog = repository.NewGormCatalog(db.DB)
		opts = append(opts, importer.WithRuns(repository.NewGormRuns(db.DB)))
		if bucket, err = storage.Open(ctx, cfg.Storage); err != nil {
			log.Error("Failed to open storage: %v", err)
			return 2
		}
	}

	engine := reconcile.NewEngine(catalog, reconcile.Options{Commerce: cfg.Import.Commerce})
	mediaImporter := media.NewImporter(catalog, bucket, media.Config{
		DataRoot:      cfg.Import.DataRoot,
		Prefix:        cfg.Import.MediaPrefix,
		ThumbnailSize: cfg.Storage.ThumbnailSize,
		MaxPixels:     cfg.Storage.ThumbnailMaxPixels,
	})
	runner := importer.NewRunner(engine, mediaImporter, opts...)

	summary, err := runner.RunFile(ctx, path)
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}
	return 0
}

// diagnoseFeed prints, per record, its validation issues, where its thumbnail path points and
// whether the file exists.
func diagnoseFeed(path, dataRoot string, validator *validation.Validator) int {
	records, err := feed.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}

	resolver := media.NewImporter(nil, nil, media.Config{DataRoot: dataRoot})
	for _, r := range records {
		fmt.Printf("=== ProductId=%s ===\n", r.ExternalID)
		for _, issue := range validator.ValidateRecord(r) {
			fmt.Printf(" %s\n", issue)
		}
		if r.Thumbnail.LocalPath == "" {
			fmt.Println(" no ThumbnailPath in feed")
			continue
		}
		full := resolver.LocalPath(r.Thumbnail.LocalPath)
		_, statErr := os.Stat(full)
		fmt.Printf(" ThumbnailPath=%q\n fullpath: %s\n file exists: %t\n", r.Thumbnail.LocalPath, filepath.Clean(full), statErr == nil)
	}
	return 0
}
