package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalogsync/internal/config"
	"catalogsync/internal/export"
	"catalogsync/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		return 2
	}

	// Initialize logger
	log := logger.New(cfg.App.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := export.Open(ctx, cfg.Export.SourceDSN)
	if err != nil {
		log.Error("%v", err)
		return 3
	}
	defer source.Close()

	var publisher export.Publisher
	if cfg.Export.Publish {
		if !cfg.Kafka.Enabled() {
			log.Error("EXPORT_PUBLISH is set but KAFKA_BROKERS is empty")
			return 2
		}
		writer := export.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.FeedTopic)
		defer writer.Close()
		publisher = writer
	}

	exporter := export.New(source, export.Options{
		Table: cfg.Export.Table,
		Columns: export.Columns{
			ID:          cfg.Export.IDColumn,
			Title:       cfg.Export.TitleColumn,
			Description: cfg.Export.DescriptionColumn,
			Price:       cfg.Export.PriceColumn,
			SKU:         cfg.Export.SKUColumn,
			Size:        cfg.Export.SizeColumn,
			ImageURL:    cfg.Export.ImageURLColumn,
		},
		Condition:   cfg.Export.PublishedCondition,
		Query:       cfg.Export.Query,
		OutputDir:   cfg.Export.OutputDir,
		FeedFile:    cfg.Import.FeedFile,
		HTTPTimeout: cfg.Export.HTTPTimeout,
	}, publisher, log)

	report, err := exporter.Run(ctx)
	if err != nil {
		log.Error("Export failed: %v", err)
		return 4
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	return 0
}
