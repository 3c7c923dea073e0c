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


package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/svnscha/knowledge/ai"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/storage"
)

// Pipeline embeds pending records in the background, one record at a time.
type Pipeline struct {
	log      storage.RecordLog
	store    storage.VectorStore
	embedder ai.Embedder
	config   Config
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(p *Pipeline) error {
		if err := config.Validate(); err != nil {
			return err
		}
		p.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// NewPipeline creates a pipeline over the given record log, vector store and
// embedder.
func NewPipeline(
	log storage.RecordLog,
	store storage.VectorStore,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if log == nil {
		return nil, ErrRecordLogRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Pipeline{
		log:      log,
		store:    store,
		embedder: embedder,
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run processes pending records until the context is cancelled. Cancellation
// is a normal shutdown and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline starting",
		"batchSize", p.config.BatchSize,
		"cycleDelay", p.config.CycleDelay,
		"startupDelay", p.config.StartupDelay)

	// Warm-up pause before the first embedding request.
	if err := sleepCtx(ctx, p.config.StartupDelay); err != nil {
		return nil
	}

	for {
		processed, err := p.RunCycle(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				p.logger.Info("pipeline stopping")
				return nil
			}
			p.logger.Error("cycle failed", "err", err)
		} else if processed > 0 {
			p.logger.Debug("cycle complete", "processed", processed)
		}

		if err := sleepCtx(ctx, p.config.CycleDelay); err != nil {
			p.logger.Info("pipeline stopping")
			return nil
		}
	}
}

// RunCycle fetches one batch of pending records and embeds them sequentially,
// in append order. It returns the number of records successfully linked.
// Per-record failures are logged and skipped; the record stays pending and is
// revisited on a later cycle.
func (p *Pipeline) RunCycle(ctx context.Context) (int, error) {
	pending, err := p.log.ListPending(ctx, p.config.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	processed := 0
	for _, record := range pending {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if err := p.processRecord(ctx, record); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return processed, err
			}
			p.logger.Warn("failed to embed record, leaving pending",
				"record", record.Id, "seq", record.SequenceNumber, "err", err)
			continue
		}
		processed++
	}
	return processed, nil
}

// processRecord embeds a single record and links the result. A record that
// turns out to be already linked counts as success.
func (p *Pipeline) processRecord(ctx context.Context, record *core.Record) error {
	// Blank records never enter the pending set, but the check is cheap and
	// the embedder would reject them anyway.
	if core.IsBlank(record.Content) {
		return nil
	}

	vector, err := p.embedder.EmbedText(ctx, record.Content)
	if err != nil {
		return err
	}

	embedding := &core.EmbeddingRecord{
		Id:         core.EmbeddingIDFor(p.config.SourceType, record.Id, record.Content),
		SourceType: p.config.SourceType,
		SourceId:   record.Id,
		Content:    record.Content,
		Vector:     vector,
		CreatedAt:  time.Now().UTC(),
	}

	err = p.store.CreateEmbeddingAndLink(ctx, embedding, record.Id)
	if errors.Is(err, storage.ErrAlreadyLinked) {
		// Another path already embedded this record.
		return nil
	}
	return err
}

// sleepCtx sleeps for the given duration or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
