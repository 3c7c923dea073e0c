package storage

import (
	"context"

	"github.com/svnscha/knowledge/core"
)

// RecordLog is the append-only, globally ordered log of source records.
// Implementations must be thread-safe and support concurrent appenders;
// sequence numbers are assigned from a single serialized allocator and are
// strictly increasing and never reused. Gaps are acceptable, duplicates
// are not.
type RecordLog interface {
	// Append adds records to the log, assigning each a fresh sequence
	// number, an ID, and a creation timestamp (unless one is preset).
	// EmbeddingId is always reset; clients never assign links.
	// Returns the records with the assigned fields populated.
	Append(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// ListPending returns records with no linked embedding and non-blank
	// content, ordered by sequence number ascending, at most limit items.
	// This is the sole read path of the embedding pipeline and is served
	// by a dedicated index.
	ListPending(ctx context.Context, limit int) ([]*core.Record, error)

	// ListByConversation returns all records of a conversation ordered by
	// sequence number ascending.
	ListByConversation(ctx context.Context, conversationId string) ([]*core.Record, error)

	// ListRecent returns up to limit records, most recent (highest
	// sequence number) first.
	ListRecent(ctx context.Context, limit int) ([]*core.Record, error)

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.Record, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error)

	// DeleteRecords removes records and their index entries by ID.
	// Linked EmbeddingRecords are left in place (soft decoupling).
	// Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, ids ...core.ID) error

	// Close releases resources held by the log, including the sequence
	// allocator lease.
	Close() error
}

// VectorStore stores embedding records and answers nearest-neighbor
// queries. Implementations must be thread-safe; searches only observe
// committed embeddings and may run concurrently with the pipeline.
type VectorStore interface {
	// CreateEmbeddingAndLink persists an embedding record and sets
	// EmbeddingId on the source record in one transaction. Both writes
	// succeed or neither does. Returns ErrNotFound if the record doesn't
	// exist and ErrAlreadyLinked if it already references an embedding.
	CreateEmbeddingAndLink(ctx context.Context, embedding *core.EmbeddingRecord, recordId core.ID) error

	// QueryNearest returns embeddings of the given source type whose
	// cosine distance to the query vector is at most maxDistance, ordered
	// by distance ascending and truncated to topK.
	QueryNearest(ctx context.Context, sourceType string, vector []float32, maxDistance float32, topK int) ([]*core.Neighbor, error)

	// GetEmbedding retrieves a single embedding record by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error)
}
