// Copyright 2025 svnscha
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/svnscha/knowledge/ai"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/storage"
)

// Config controls result count and the relevance cutoff.
type Config struct {
	// TopK is the maximum number of hits returned.
	TopK int

	// MinScore is the minimum cosine similarity (1 - distance) a hit must
	// reach to be included. Range (0, 1]; higher values are stricter.
	MinScore float32

	// SourceType restricts the search to embeddings of this source type.
	SourceType string
}

// DefaultConfig returns the standard search configuration.
func DefaultConfig() Config {
	return Config{
		TopK:       10,
		MinScore:   0.40,
		SourceType: core.SourceTypeMessage,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("%w: TopK must be positive", ErrInvalidConfig)
	}
	if c.MinScore <= 0 || c.MinScore > 1 {
		return fmt.Errorf("%w: MinScore must be in (0, 1]", ErrInvalidConfig)
	}
	if c.SourceType == "" {
		return fmt.Errorf("%w: SourceType is required", ErrInvalidConfig)
	}
	return nil
}

// Searcher finds records semantically similar to a text query.
type Searcher struct {
	log      storage.RecordLog
	store    storage.VectorStore
	embedder ai.Embedder
	config   Config
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(s *Searcher) error {
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// NewSearcher creates a searcher over the given record log, vector store and
// embedder.
func NewSearcher(
	log storage.RecordLog,
	store storage.VectorStore,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if log == nil {
		return nil, ErrRecordLogRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		log:      log,
		store:    store,
		embedder: embedder,
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search finds records similar to the query and returns them in
// chronological order.
func (s *Searcher) Search(ctx context.Context, query string) (*Result, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor is Search with observation hooks. The monitor receives
// callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, monitor SearchMonitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if core.IsBlank(query) {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(vector)

	// Similarity threshold expressed as a distance ceiling.
	maxDistance := 1.0 - s.config.MinScore
	neighbors, err := s.store.QueryNearest(ctx, s.config.SourceType, vector, maxDistance, s.config.TopK)
	if err != nil {
		s.logger.Error("error querying for nearest embeddings", "err", err)
		return nil, err
	}
	monitor.AfterNearestQuery(neighbors)

	result := &Result{Query: query}
	if len(neighbors) == 0 {
		monitor.Finish(result)
		return result, nil
	}

	distances := make(map[core.ID]float32, len(neighbors))
	ids := make([]core.ID, 0, len(neighbors))
	for _, neighbor := range neighbors {
		sourceId := neighbor.Embedding.SourceId
		if _, ok := distances[sourceId]; ok {
			continue
		}
		distances[sourceId] = neighbor.Distance
		ids = append(ids, sourceId)
	}

	// Records deleted since embedding are silently dropped here.
	records, err := s.log.GetRecords(ctx, ids...)
	if err != nil {
		s.logger.Error("error resolving records", "recordCount", len(ids), "err", err)
		return nil, err
	}
	monitor.AfterRecordResolution(records)

	for _, record := range records {
		result.Hits = append(result.Hits, Hit{
			Record:   record,
			Distance: distances[record.Id],
		})
	}

	// Relevance selected the hits; time orders them.
	slices.SortFunc(result.Hits, func(a, b Hit) int {
		if c := a.Record.CreatedAt.Compare(b.Record.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.Record.SequenceNumber < b.Record.SequenceNumber:
			return -1
		case a.Record.SequenceNumber > b.Record.SequenceNumber:
			return 1
		}
		return 0
	})

	monitor.Finish(result)
	return result, nil
}
