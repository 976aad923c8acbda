package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"catalogsync/internal/database"
	"catalogsync/internal/models"
	"catalogsync/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRuns(t *testing.T) {
	ctx := context.Background()
	db, err := database.New("sqlite://"+filepath.Join(t.TempDir(), "runs.db"), "silent")
	require.NoError(t, err)
	defer db.Close()
	runs := repository.NewGormRuns(db.DB)

	older := time.Now().Add(-time.Hour)
	first := &models.ImportRun{Source: "a.json", StartedAt: older}
	require.NoError(t, runs.Create(ctx, first))
	assert.NotEmpty(t, first.ID)

	now := time.Now()
	second := &models.ImportRun{Source: "b.json", StartedAt: now}
	require.NoError(t, runs.Create(ctx, second))

	second.Status = models.RunStatusCompleted
	second.Created = 2
	second.Errors = []string{"record 3: missing external id"}
	require.NoError(t, runs.Save(ctx, second))

	got, err := runs.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.Equal(t, 2, got.Created)
	assert.Equal(t, []string{"record 3: missing external id"}, []string(got.Errors))

	list, err := runs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = runs.Get(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
