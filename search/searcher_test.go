package search

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svnscha/knowledge/ai/mock"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/storage"
	"github.com/svnscha/knowledge/storage/badger"
)

// searchFixture wires a searcher over in-memory stores with the deterministic
// mock embedder, so similarity is driven purely by shared vocabulary.
type searchFixture struct {
	log      storage.RecordLog
	store    storage.VectorStore
	embedder *mock.MockEmbedder
	searcher *Searcher
}

func newSearchFixture(t *testing.T, opts ...Option) *searchFixture {
	t.Helper()

	log, store, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		log.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	searcher, err := NewSearcher(log, store, embedder, opts...)
	require.NoError(t, err)

	return &searchFixture{log: log, store: store, embedder: embedder, searcher: searcher}
}

// addEmbedded appends a record with the given content and timestamp and links
// its embedding, the way the pipeline would.
func (f *searchFixture) addEmbedded(t *testing.T, content string, at time.Time) *core.Record {
	t.Helper()
	ctx := context.Background()

	added, err := f.log.Append(ctx, &core.Record{
		ConversationId: "conv-1",
		Role:           core.RoleUser,
		Content:        content,
		CreatedAt:      at,
	})
	require.NoError(t, err)
	record := added[0]

	vector, err := f.embedder.EmbedText(ctx, content)
	require.NoError(t, err)

	embedding := &core.EmbeddingRecord{
		SourceType: core.SourceTypeMessage,
		SourceId:   record.Id,
		Content:    record.Content,
		Vector:     vector,
		CreatedAt:  at,
	}
	require.NoError(t, f.store.CreateEmbeddingAndLink(ctx, embedding, record.Id))
	return record
}

func TestNewSearcherValidation(t *testing.T) {
	log, store, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { log.Close(); backend.Close() }()

	embedder := mock.NewMockEmbedder()

	_, err = NewSearcher(nil, store, embedder)
	assert.ErrorIs(t, err, ErrRecordLogRequired)

	_, err = NewSearcher(log, nil, embedder)
	assert.ErrorIs(t, err, ErrVectorStoreRequired)

	_, err = NewSearcher(log, store, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewSearcher(log, store, embedder, WithConfig(Config{TopK: 0}))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSearcher(log, store, embedder, WithConfig(Config{TopK: 5, MinScore: 1.5, SourceType: "Message"}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSearchEmptyQuery(t *testing.T) {
	f := newSearchFixture(t)

	_, err := f.searcher.Search(context.Background(), "   \t")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchFindsSimilarRecords(t *testing.T) {
	f := newSearchFixture(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	sky := f.addEmbedded(t, "The sky is blue", base)
	f.addEmbedded(t, "stock market trends", base.Add(time.Minute))

	result, err := f.searcher.Search(context.Background(), "What color is the sky?")
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, sky.Id, result.Hits[0].Record.Id)
	assert.Equal(t, "The sky is blue", result.Hits[0].Record.Content)
	assert.InDelta(t, 0.5, result.Hits[0].Distance, 1e-5)
	assert.False(t, result.Empty())
}

func TestSearchHitsAreChronological(t *testing.T) {
	f := newSearchFixture(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	// The older record is the weaker match, so distance order and time
	// order disagree.
	older := f.addEmbedded(t, "The sky is blue", base)
	newer := f.addEmbedded(t, "sky color chart", base.Add(time.Hour))
	f.addEmbedded(t, "stock market trends", base.Add(2*time.Hour))

	result, err := f.searcher.Search(context.Background(), "What color is the sky?")
	require.NoError(t, err)

	require.Len(t, result.Hits, 2)
	assert.Equal(t, older.Id, result.Hits[0].Record.Id)
	assert.Equal(t, newer.Id, result.Hits[1].Record.Id)
	assert.Greater(t, result.Hits[0].Distance, result.Hits[1].Distance,
		"weaker match should still come first by time")
}

func TestSearchMinScoreExcludesWeakMatches(t *testing.T) {
	config := DefaultConfig()
	config.MinScore = 0.6
	f := newSearchFixture(t, WithConfig(config))
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	f.addEmbedded(t, "The sky is blue", base) // similarity 0.5, below cutoff
	strong := f.addEmbedded(t, "sky color chart", base.Add(time.Hour))

	result, err := f.searcher.Search(context.Background(), "What color is the sky?")
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, strong.Id, result.Hits[0].Record.Id)
}

func TestSearchNoRelevantResults(t *testing.T) {
	f := newSearchFixture(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	f.addEmbedded(t, "stock market trends", base)

	result, err := f.searcher.Search(context.Background(), "What color is the sky?")
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Equal(t, "No relevant results found.", result.Render())
}

func TestSearchTopKLimitsHits(t *testing.T) {
	config := DefaultConfig()
	config.TopK = 2
	f := newSearchFixture(t, WithConfig(config))
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		f.addEmbedded(t, "sky color chart", base.Add(time.Duration(i)*time.Minute))
	}

	result, err := f.searcher.Search(context.Background(), "What color is the sky?")
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
}

func TestSearchSkipsDeletedRecords(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	kept := f.addEmbedded(t, "The sky is blue", base)
	deleted := f.addEmbedded(t, "sky color chart", base.Add(time.Hour))

	require.NoError(t, f.log.DeleteRecords(ctx, deleted.Id))

	result, err := f.searcher.Search(ctx, "What color is the sky?")
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, kept.Id, result.Hits[0].Record.Id)
}

func TestResultRender(t *testing.T) {
	f := newSearchFixture(t)
	base := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	f.addEmbedded(t, "The sky is blue", base)
	f.addEmbedded(t, "sky color chart", base.Add(time.Hour))

	result, err := f.searcher.Search(context.Background(), "What color is the sky?")
	require.NoError(t, err)

	rendered := result.Render()
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2025-03-14T09:26:53Z] user: The sky is blue", lines[0])
	assert.Equal(t, "[2025-03-14T10:26:53Z] user: sky color chart", lines[1])
}

// recordingMonitor captures monitor callbacks for assertions.
type recordingMonitor struct {
	started   string
	vectorLen int
	neighbors int
	resolved  int
	finished  *Result
}

func (m *recordingMonitor) Start(query string)                       { m.started = query }
func (m *recordingMonitor) AfterQueryEmbedding(v []float32)          { m.vectorLen = len(v) }
func (m *recordingMonitor) AfterNearestQuery(n []*core.Neighbor)     { m.neighbors = len(n) }
func (m *recordingMonitor) AfterRecordResolution(r []*core.Record)   { m.resolved = len(r) }
func (m *recordingMonitor) Finish(result *Result)                    { m.finished = result }

func TestSearchWithMonitor(t *testing.T) {
	f := newSearchFixture(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	f.addEmbedded(t, "The sky is blue", base)

	monitor := &recordingMonitor{}
	result, err := f.searcher.SearchWithMonitor(context.Background(), "What color is the sky?", monitor)
	require.NoError(t, err)

	assert.Equal(t, "What color is the sky?", monitor.started)
	assert.Equal(t, mock.DefaultDimension, monitor.vectorLen)
	assert.Equal(t, 1, monitor.neighbors)
	assert.Equal(t, 1, monitor.resolved)
	assert.Same(t, result, monitor.finished)
}
