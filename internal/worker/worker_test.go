package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"catalogsync/internal/importer"
	"catalogsync/internal/logger"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
	"catalogsync/internal/worker/processors"
	"catalogsync/internal/worker/processors/validation"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	drained   chan struct{}
	closed    bool
}

func newFakeReader(values ...string) *fakeReader {
	r := &fakeReader{drained: make(chan struct{})}
	for i, v := range values {
		r.messages = append(r.messages, kafka.Message{Offset: int64(i), Value: []byte(v)})
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func TestWorkerProcessesStream(t *testing.T) {
	// Arrange
	repo := repository.NewMemoryCatalog()
	runner := importer.NewRunner(reconcile.NewEngine(repo, reconcile.Options{Commerce: true}), nil)
	processor := processors.NewFeedProcessor(runner, validation.New(true, logger.Nop()), logger.Nop())
	reader := newFakeReader(
		`{"ProductId": "A", "Name": "Lamp", "Price": "5"}`,
		`not json`,
		`{"Name": "no id"}`,
		`{"ProductId": "A", "Name": "Lamp v2"}`,
	)
	w := New(reader, processor, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)

	// Act
	go func() { done <- w.Start(ctx) }()
	select {
	case <-reader.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not drain the stream")
	}
	cancel()
	require.NoError(t, <-done)
	w.Stop()

	// Assert
	summary := processor.Summary()
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Len(t, summary.Errors, 2)
	assert.Equal(t, 2, processor.Errors())
	assert.Equal(t, []int64{0, 1, 2, 3}, reader.committed)
	assert.True(t, reader.closed)

	entity, err := repo.FindParentByExternalID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Lamp v2", entity.Title)
	assert.Equal(t, "5.00", entity.Price)
}
