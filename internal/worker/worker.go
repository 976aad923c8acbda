package worker

import (
	"context"
	"errors"
	"time"

	"catalogsync/internal/config"
	"catalogsync/internal/logger"
	"catalogsync/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

// summaryEvery is how many messages pass between summary log lines.
const summaryEvery = 100

// MessageReader is the subset of kafka.Reader the worker consumes.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Worker struct {
	logger    *logger.Logger
	reader    MessageReader
	processor *processors.FeedProcessor
}

// NewReader opens a consumer-group reader on the feed topic.
func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.FeedTopic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
}

func New(reader MessageReader, processor *processors.FeedProcessor, logger *logger.Logger) *Worker {
	return &Worker{
		logger:    logger,
		reader:    reader,
		processor: processor,
	}
}

// Start consumes records one at a time until ctx is cancelled. Every message is committed
// once handled, whatever its outcome.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Worker started, listening for feed records...")

	handled := 0
	for {
		message, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				w.logSummary()
				return nil
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message at offset %d", message.Offset)

		result, err := w.processor.Process(ctx, message.Value)
		switch {
		case err != nil:
			w.logger.Error("Failed to process record %s: %v", string(message.Key), err)
		case result.MediaErr != nil:
			w.logger.Warn("Record %s applied without media: %v", result.Record.ExternalID, result.MediaErr)
		}

		if err := w.reader.CommitMessages(ctx, message); err != nil && ctx.Err() == nil {
			w.logger.Error("Failed to commit offset %d: %v", message.Offset, err)
		}

		handled++
		if handled%summaryEvery == 0 {
			w.logSummary()
		}
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
}

func (w *Worker) logSummary() {
	s := w.processor.Summary()
	w.logger.Info("Feed summary: %d created, %d updated, %d errors", s.Created, s.Updated, w.processor.Errors())
}
