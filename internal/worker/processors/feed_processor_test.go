package processors

import (
	"context"
	"fmt"
	"testing"

	"catalogsync/internal/feed"
	"catalogsync/internal/importer"
	"catalogsync/internal/logger"
	"catalogsync/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warningRecords struct{}

func (warningRecords) ProcessRecord(ctx context.Context, record feed.Record) importer.RecordResult {
	return importer.RecordResult{
		Record: record,
		Result: reconcile.Result{
			EntityID: 1,
			Outcome:  reconcile.OutcomeUpdatedParent,
			Warnings: []string{record.ExternalID + ": sku conflict"},
		},
	}
}

func TestFeedProcessorKeepsRecentErrors(t *testing.T) {
	// Arrange
	fp := NewFeedProcessor(warningRecords{}, nil, logger.Nop())
	total := RecentErrors + 50

	// Act
	for i := 0; i < total; i++ {
		value := []byte("not json")
		if i%2 == 0 {
			value = []byte(fmt.Sprintf(`{"ProductId": "P%d"}`, i))
		}
		_, _ = fp.Process(context.Background(), value)
	}

	// Assert
	summary := fp.Summary()
	assert.Equal(t, total, fp.Errors())
	require.Len(t, summary.Errors, RecentErrors)
	assert.Equal(t, total/2, summary.Updated)
	assert.Contains(t, summary.Errors[RecentErrors-1], fmt.Sprintf("message %d", total-1))
	assert.Contains(t, summary.Errors[RecentErrors-2], fmt.Sprintf("P%d", total-2))
}
