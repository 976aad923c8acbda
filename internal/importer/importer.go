// Package importer runs feed records through reconciliation and media import.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"catalogsync/internal/feed"
	"catalogsync/internal/logger"
	"catalogsync/internal/media"
	"catalogsync/internal/models"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
)

// Reconciler resolves a record to a catalog entity.
type Reconciler interface {
	Reconcile(ctx context.Context, record feed.Record) (reconcile.Result, error)
}

// MediaImporter stores a record's thumbnail for an entity.
type MediaImporter interface {
	Import(ctx context.Context, ref feed.Thumbnail, entityID uint) (*models.Asset, error)
}

type Runner struct {
	engine Reconciler
	media  MediaImporter
	runs   repository.RunRepository
	logger *logger.Logger
	trace  io.Writer
	now    func() time.Time
}

type Option func(*Runner)

// WithRuns persists every run through repo.
func WithRuns(repo repository.RunRepository) Option {
	return func(r *Runner) { r.runs = repo }
}

// WithTrace writes one progress line per applied record to w.
func WithTrace(w io.Writer) Option {
	return func(r *Runner) { r.trace = w }
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func NewRunner(engine Reconciler, mediaImporter MediaImporter, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		media:  mediaImporter,
		logger: logger.Nop(),
		trace:  io.Discard,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessRecord reconciles one record and imports its thumbnail. Media is skipped when the
// record could not be reconciled.
func (r *Runner) ProcessRecord(ctx context.Context, record feed.Record) RecordResult {
	out := RecordResult{Record: record}

	res, err := r.engine.Reconcile(ctx, record)
	out.Result = res
	if err != nil {
		out.Err = err
		r.logger.Warn("Record %s rejected: %v", label(record), err)
		return out
	}
	for _, w := range res.Warnings {
		r.logger.Warn("Record %s: %s", label(record), w)
	}

	if r.media != nil && !record.Thumbnail.IsZero() {
		asset, err := r.media.Import(ctx, record.Thumbnail, res.EntityID)
		if err != nil {
			out.MediaErr = err
			r.logger.Warn("Media import failed for %s: %v", label(record), err)
		} else {
			out.Asset = asset
		}
	}

	line := fmt.Sprintf("Processed %s -> %d", record.ExternalID, res.EntityID)
	if out.Asset != nil {
		line += " (thumb)"
	}
	fmt.Fprintln(r.trace, line)
	r.logger.Debug("%s [%s]", line, res.Outcome)
	return out
}

// Run processes records in feed order and continues past per-record failures.
func (r *Runner) Run(ctx context.Context, source string, records []feed.Record) Summary {
	summary := NewSummary()
	run := r.startRun(ctx, source)
	if run != nil {
		summary.RunID = run.ID
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("run interrupted: %v", err))
			break
		}
		summary.Add(r.ProcessRecord(ctx, record))
	}

	r.logger.Info("Import of %s finished: %d created, %d updated, %d errors",
		source, summary.Created, summary.Updated, len(summary.Errors))
	r.finishRun(ctx, run, summary, nil)
	return summary
}

// RunFile loads a feed file and runs it. An unreadable or unparsable feed processes nothing.
func (r *Runner) RunFile(ctx context.Context, path string) (Summary, error) {
	records, err := feed.Load(path)
	if err != nil {
		summary := NewSummary()
		if run := r.startRun(ctx, path); run != nil {
			summary.RunID = run.ID
			r.finishRun(ctx, run, summary, err)
		}
		r.logger.Error("Feed %s rejected: %v", path, err)
		return summary, fmt.Errorf("failed to load feed: %w", err)
	}
	return r.Run(ctx, path, records), nil
}

func (r *Runner) startRun(ctx context.Context, source string) *models.ImportRun {
	if r.runs == nil {
		return nil
	}
	run := &models.ImportRun{
		Source:    source,
		Status:    models.RunStatusRunning,
		StartedAt: r.now().UTC(),
	}
	if err := r.runs.Create(ctx, run); err != nil {
		r.logger.Error("Failed to record import run: %v", err)
		return nil
	}
	return run
}

func (r *Runner) finishRun(ctx context.Context, run *models.ImportRun, summary Summary, failure error) {
	if run == nil {
		return
	}
	finished := r.now().UTC()
	run.FinishedAt = &finished
	run.Created = summary.Created
	run.Updated = summary.Updated
	run.Errors = summary.Errors
	run.Status = models.RunStatusCompleted
	if failure != nil {
		run.Status = models.RunStatusFailed
		run.Failure = failure.Error()
	}
	// the run is saved even when the caller's context is already done
	if err := r.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Error("Failed to save import run %s: %v", run.ID, err)
	}
}

// IsFatal reports whether err stopped a run before any record was processed.
func IsFatal(err error) bool {
	return errors.Is(err, feed.ErrUnreadable) || errors.Is(err, feed.ErrInvalid)
}

var _ MediaImporter = (*media.Importer)(nil)
