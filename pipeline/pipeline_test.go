package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svnscha/knowledge/ai/mock"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/storage"
	"github.com/svnscha/knowledge/storage/badger"
)

func newTestPipeline(t *testing.T, embedder *mock.MockEmbedder, config Config) (*Pipeline, storage.RecordLog, storage.VectorStore) {
	t.Helper()

	log, store, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		log.Close()
		backend.Close()
	})

	p, err := NewPipeline(log, store, embedder, WithConfig(config))
	require.NoError(t, err)
	return p, log, store
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CycleDelay = time.Millisecond
	cfg.StartupDelay = 0
	return cfg
}

func appendMessages(t *testing.T, log storage.RecordLog, contents ...string) []*core.Record {
	t.Helper()
	records := make([]*core.Record, len(contents))
	for i, content := range contents {
		records[i] = &core.Record{
			ConversationId: "conv-1",
			Role:           core.RoleUser,
			Content:        content,
		}
	}
	added, err := log.Append(context.Background(), records...)
	require.NoError(t, err)
	return added
}

func TestNewPipelineValidation(t *testing.T) {
	log, store, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { log.Close(); backend.Close() }()

	embedder := mock.NewMockEmbedder()

	_, err = NewPipeline(nil, store, embedder)
	assert.ErrorIs(t, err, ErrRecordLogRequired)

	_, err = NewPipeline(log, nil, embedder)
	assert.ErrorIs(t, err, ErrVectorStoreRequired)

	_, err = NewPipeline(log, store, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(log, store, embedder, WithConfig(Config{}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunCycleEmbedsBatchInOrder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var embedded []string
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedded = append(embedded, text)
		return mock.DeterministicVector(text, mock.DefaultDimension), nil
	}

	p, log, _ := newTestPipeline(t, embedder, testConfig())
	ctx := context.Background()

	appendMessages(t, log, "first", "second", "third")

	processed, err := p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.Equal(t, []string{"first", "second", "third"}, embedded)

	pending, err := log.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPipelineDrainsBacklogAcrossCycles(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	config := testConfig()
	config.BatchSize = 10

	p, log, store := newTestPipeline(t, embedder, config)
	ctx := context.Background()

	contents := make([]string, 25)
	for i := range contents {
		contents[i] = fmt.Sprintf("message number %d", i)
	}
	added := appendMessages(t, log, contents...)

	// 25 pending records with batch size 10 drain in three cycles.
	counts := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		processed, err := p.RunCycle(ctx)
		require.NoError(t, err)
		counts = append(counts, processed)
	}
	assert.Equal(t, []int{10, 10, 5, 0}, counts)

	// Every record is linked to exactly one embedding, content verbatim.
	seen := make(map[core.ID]bool)
	for _, record := range added {
		updated, err := log.GetRecord(ctx, record.Id)
		require.NoError(t, err)
		require.True(t, updated.Linked(), "record %d not linked", updated.SequenceNumber)
		assert.False(t, seen[updated.EmbeddingId], "embedding %d linked twice", updated.EmbeddingId)
		seen[updated.EmbeddingId] = true

		embedding, err := store.GetEmbedding(ctx, updated.EmbeddingId)
		require.NoError(t, err)
		assert.Equal(t, updated.Content, embedding.Content)
		assert.Equal(t, updated.Id, embedding.SourceId)
		assert.Equal(t, core.SourceTypeMessage, embedding.SourceType)
	}
}

func TestPipelineSkipsBlankRecords(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var embedded []string
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedded = append(embedded, text)
		return mock.DeterministicVector(text, mock.DefaultDimension), nil
	}

	p, log, _ := newTestPipeline(t, embedder, testConfig())
	ctx := context.Background()

	added := appendMessages(t, log, "real content", "", "   \t")

	processed, err := p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"real content"}, embedded)

	// Blank records stay unlinked forever, without being revisited.
	for _, record := range added[1:] {
		updated, err := log.GetRecord(ctx, record.Id)
		require.NoError(t, err)
		assert.False(t, updated.Linked())
	}
	processed, err = p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Len(t, embedded, 1)
}

func TestPipelineRetriesFailedRecordNextCycle(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	failing := "message number 3"
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == failing {
			return nil, errors.New("embedding service unavailable")
		}
		return mock.DeterministicVector(text, mock.DefaultDimension), nil
	}

	p, log, _ := newTestPipeline(t, embedder, testConfig())
	ctx := context.Background()

	contents := make([]string, 10)
	for i := range contents {
		contents[i] = fmt.Sprintf("message number %d", i)
	}
	appendMessages(t, log, contents...)

	// First cycle: nine succeed, the failing one stays pending.
	processed, err := p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, processed)

	pending, err := log.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, failing, pending[0].Content)

	// Service recovers: only the failed record is embedded again.
	var embedded []string
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedded = append(embedded, text)
		return mock.DeterministicVector(text, mock.DefaultDimension), nil
	}

	processed, err = p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{failing}, embedded)

	pending, err = log.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunCycleStopsOnCancellation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	ctx, cancel := context.WithCancel(context.Background())
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Cancel mid-batch after the first record.
		cancel()
		return mock.DeterministicVector(text, mock.DefaultDimension), nil
	}

	p, log, _ := newTestPipeline(t, embedder, testConfig())
	appendMessages(t, log, "one", "two", "three")

	processed, err := p.RunCycle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, processed)
}

func TestRunReturnsNilOnShutdown(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p, log, _ := newTestPipeline(t, embedder, testConfig())

	appendMessages(t, log, "drain me")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	// Give the pipeline a moment to drain, then shut down.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	pending, err := log.ListPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
