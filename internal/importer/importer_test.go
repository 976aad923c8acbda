package importer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalogsync/internal/database"
	"catalogsync/internal/feed"
	"catalogsync/internal/media"
	"catalogsync/internal/models"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
	"catalogsync/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	root   string
	repo   *repository.MemoryCatalog
	runner *Runner
	trace  *bytes.Buffer
}

func newHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	root := t.TempDir()
	bucket, err := storage.NewLocalBucket(t.TempDir(), "/uploads")
	require.NoError(t, err)

	repo := repository.NewMemoryCatalog()
	trace := &bytes.Buffer{}
	engine := reconcile.NewEngine(repo, reconcile.Options{Commerce: true})
	importer := media.NewImporter(repo, bucket, media.Config{DataRoot: root, Prefix: "pjm_", ThumbnailSize: 8})

	return harness{
		root:   root,
		repo:   repo,
		trace:  trace,
		runner: NewRunner(engine, importer, append([]Option{WithTrace(trace)}, opts...)...),
	}
}

func (h harness) writeImage(t *testing.T, rel string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	full := filepath.Join(h.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, buf.Bytes(), 0o644))
}

func (h harness) writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(h.root, "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const mixedFeed = `[
	{"ProductId": "1", "Name": "Mug", "Price": "4.5", "ThumbnailPath": "images/thumb_1.png"},
	{"ProductId": "2", "Name": "Cap", "Price": 3},
	{"Name": "Orphan"},
	{"ProductId": "1", "Name": "Mug XL"}
]`

func TestRunCountsAndContinuesPastFailures(t *testing.T) {
	// Arrange
	h := newHarness(t)
	h.writeImage(t, "images/thumb_1.png")
	path := h.writeFeed(t, mixedFeed)

	// Act
	summary, err := h.runner.RunFile(context.Background(), path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 3, summary.Created+summary.Updated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "record 2")

	lines := strings.Split(strings.TrimSpace(h.trace.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Processed 1 -> 1 (thumb)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Processed 2 -> "))
	assert.False(t, strings.HasSuffix(lines[1], "(thumb)"))
	assert.Equal(t, "Processed 1 -> 1", lines[2])
}

func TestRunIsIdempotent(t *testing.T) {
	h := newHarness(t)
	records, err := feed.Parse([]byte(`[{"ProductId": "A", "Name": "Vase"}, {"ProductId": "B", "Name": "Bowl"}]`))
	require.NoError(t, err)

	first := h.runner.Run(context.Background(), "feed", records)
	second := h.runner.Run(context.Background(), "feed", records)

	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, 2, h.repo.Len())
}

func TestMissingThumbnailIsNotFatal(t *testing.T) {
	h := newHarness(t)
	records, err := feed.Parse([]byte(`[{"ProductId": "A", "Name": "Chair", "Price": "12", "ThumbnailPath": "images/missing.jpg"}]`))
	require.NoError(t, err)

	result := h.runner.ProcessRecord(context.Background(), records[0])
	summary := NewSummary()
	summary.Add(result)

	assert.True(t, result.Applied())
	assert.ErrorIs(t, result.MediaErr, media.ErrMediaNotFound)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "media")

	entity, err := h.repo.FindParentByExternalID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Chair", entity.Title)
	assert.Equal(t, "12.00", entity.Price)
	assert.Nil(t, entity.ImageID)
}

func TestRunFileFatalFeed(t *testing.T) {
	h := newHarness(t)

	summary, err := h.runner.RunFile(context.Background(), h.writeFeed(t, "{not json"))
	assert.True(t, IsFatal(err))
	assert.Zero(t, summary.Created+summary.Updated)
	assert.Equal(t, 0, h.repo.Len())

	_, err = h.runner.RunFile(context.Background(), filepath.Join(h.root, "absent.json"))
	assert.ErrorIs(t, err, feed.ErrUnreadable)
}

func TestRunIsPersisted(t *testing.T) {
	db, err := database.New("sqlite://"+filepath.Join(t.TempDir(), "runs.db"), "silent")
	require.NoError(t, err)
	defer db.Close()
	runs := repository.NewGormRuns(db.DB)

	h := newHarness(t, WithRuns(runs))
	summary, err := h.runner.RunFile(context.Background(), h.writeFeed(t, mixedFeed))
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)

	run, err := runs.Get(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, summary.Created, run.Created)
	assert.Equal(t, summary.Updated, run.Updated)
	assert.NotNil(t, run.FinishedAt)

	failed, err := h.runner.RunFile(context.Background(), h.writeFeed(t, "garbage"))
	require.Error(t, err)
	run, err = runs.Get(context.Background(), failed.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.Failure)
}
