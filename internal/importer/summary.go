package importer

import (
	"fmt"

	"catalogsync/internal/feed"
	"catalogsync/internal/models"
	"catalogsync/internal/reconcile"
)

// Summary aggregates the results of a run.
type Summary struct {
	RunID   string   `json:"run_id,omitempty"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

func NewSummary() Summary {
	return Summary{Errors: []string{}}
}

// RecordResult is what happened to one feed record.
type RecordResult struct {
	Record   feed.Record
	Result   reconcile.Result
	Asset    *models.Asset
	Err      error
	MediaErr error
}

// Applied reports whether the record reached the catalog.
func (r RecordResult) Applied() bool {
	return r.Err == nil && r.Result.EntityID != 0
}

// Add folds a record result into the summary. Media failures and warnings are listed as
// errors but the record still counts.
func (s *Summary) Add(r RecordResult) {
	if r.Err != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", label(r.Record), r.Err))
		return
	}
	if r.Result.Outcome.Created() {
		s.Created++
	} else {
		s.Updated++
	}
	s.Errors = append(s.Errors, r.Result.Warnings...)
	if r.MediaErr != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("%s: media: %v", label(r.Record), r.MediaErr))
	}
}

func label(record feed.Record) string {
	if record.ExternalID == "" {
		return fmt.Sprintf("record %d", record.Index)
	}
	return record.ExternalID
}
