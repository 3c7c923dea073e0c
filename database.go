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


package knowledge

import (
	"context"
	"log/slog"

	"github.com/svnscha/knowledge/ai"
	"github.com/svnscha/knowledge/ai/openai"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/pipeline"
	"github.com/svnscha/knowledge/search"
	"github.com/svnscha/knowledge/storage"
	"github.com/svnscha/knowledge/storage/badger"
)

// Database bundles the record log, vector store and embedder behind one
// handle. It is the main entry point for embedding applications.
type Database struct {
	backend  *badger.Backend
	log      storage.RecordLog
	store    storage.VectorStore
	embedder ai.Embedder
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects a pre-built embedder instead of constructing the
// OpenAI-compatible one. Mainly useful for tests.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the storage backend in memory, without touching disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the storage at filePath and wires up the embedding
// backend.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	log, err := badger.NewRecordLog(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	store := badger.NewVectorStore(backend)

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			log.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		log:      log,
		store:    store,
		embedder: embedder,
		logger:   slog.Default(),
	}, nil
}

// Close releases the record log and closes the storage backend.
func (db *Database) Close() error {
	if err := db.log.Close(); err != nil {
		db.logger.Error("error closing record log", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Append adds chat messages to the record log.
func (db *Database) Append(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	return db.log.Append(ctx, records...)
}

// RecordLog returns the underlying record log.
func (db *Database) RecordLog() storage.RecordLog {
	return db.log
}

// VectorStore returns the underlying vector store.
func (db *Database) VectorStore() storage.VectorStore {
	return db.store
}

// Embedder returns the configured embedder.
func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

// NewPipeline creates a background embedding pipeline over this database.
func (db *Database) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.NewPipeline(db.log, db.store, db.embedder, opts...)
}

// NewSearcher creates a similarity searcher over this database.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.log, db.store, db.embedder, opts...)
}
