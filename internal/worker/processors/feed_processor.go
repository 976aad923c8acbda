package processors

import (
	"context"
	"fmt"
	"sync"

	"catalogsync/internal/feed"
	"catalogsync/internal/importer"
	"catalogsync/internal/logger"
	"catalogsync/internal/worker/processors/validation"
)

// RecentErrors is how many error lines the running summary keeps.
const RecentErrors = 100

// RecordProcessor applies one feed record to the catalog.
type RecordProcessor interface {
	ProcessRecord(ctx context.Context, record feed.Record) importer.RecordResult
}

// FeedProcessor turns stream messages into feed records and keeps a running summary.
type FeedProcessor struct {
	logger    *logger.Logger
	records   RecordProcessor
	validator *validation.Validator

	mu      sync.Mutex
	seen    int
	errors  int
	summary importer.Summary
}

func NewFeedProcessor(records RecordProcessor, validator *validation.Validator, logger *logger.Logger) *FeedProcessor {
	return &FeedProcessor{
		logger:    logger,
		records:   records,
		validator: validator,
		summary:   importer.NewSummary(),
	}
}

// Process handles one message value. A value that is not a feed record is counted as an error
// and reported, it is not retried.
func (fp *FeedProcessor) Process(ctx context.Context, value []byte) (importer.RecordResult, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	record, err := feed.ParseRecord(value)
	record.Index = fp.seen
	fp.seen++
	if err != nil {
		fp.keepErrors(func() {
			fp.summary.Errors = append(fp.summary.Errors, fmt.Sprintf("message %d: %v", record.Index, err))
		})
		return importer.RecordResult{Record: record, Err: err}, err
	}

	if fp.validator != nil {
		for _, issue := range fp.validator.ValidateRecord(record) {
			fp.logger.Warn("Record %d (%s): %s", record.Index, record.ExternalID, issue)
		}
	}

	result := fp.records.ProcessRecord(ctx, record)
	fp.keepErrors(func() { fp.summary.Add(result) })
	fp.logger.Debug("Record %s processed: %s", record.ExternalID, result.Result.Outcome)
	return result, result.Err
}

// keepErrors runs add, counts the error lines it appended and trims the list to the most
// recent RecentErrors.
func (fp *FeedProcessor) keepErrors(add func()) {
	before := len(fp.summary.Errors)
	add()
	fp.errors += len(fp.summary.Errors) - before
	if n := len(fp.summary.Errors); n > RecentErrors {
		fp.summary.Errors = append([]string{}, fp.summary.Errors[n-RecentErrors:]...)
	}
}

// Errors returns how many error lines were reported since the processor started.
func (fp *FeedProcessor) Errors() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.errors
}

// Summary returns a copy of the totals so far. Errors holds only the most recent lines.
func (fp *FeedProcessor) Summary() importer.Summary {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	out := fp.summary
	out.Errors = append([]string(nil), fp.summary.Errors...)
	return out
}
