package badger

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/storage"
)

// VectorStore implements storage.VectorStore for BadgerDB.
//
// Embedding records live under their own key prefix and are scanned in full
// for nearest-neighbor queries. Linear scan is adequate for the intended
// corpus size; the store contract leaves room for an ANN index behind the
// same interface.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) *VectorStore {
	return &VectorStore{
		backend: backend,
	}
}

// CreateEmbeddingAndLink persists the embedding record and links it to the
// source record in a single transaction. The record's pending-index entry
// is removed in the same transaction, so a committed link is never
// revisited by the pipeline.
func (s *VectorStore) CreateEmbeddingAndLink(ctx context.Context, embedding *core.EmbeddingRecord, recordId core.ID) error {
	if embedding != nil && embedding.Id == 0 {
		embedding.Id = core.EmbeddingIDFor(embedding.SourceType, embedding.SourceId, embedding.Content)
	}
	if err := core.ValidateEmbeddingRecord(embedding); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readRecord(tx, makeRecordKey(recordId))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if record.Linked() {
			return storage.ErrAlreadyLinked
		}

		if embedding.CreatedAt.IsZero() {
			embedding.CreatedAt = time.Now().UTC()
		}

		if err := tx.Set(makeEmbeddingKey(embedding.Id), storage.MarshalEmbeddingRecord(embedding)); err != nil {
			return err
		}

		record.EmbeddingId = embedding.Id
		if err := tx.Set(makeRecordKey(record.Id), storage.MarshalRecord(record)); err != nil {
			return err
		}

		if err := tx.Delete(makePendingKey(record.SequenceNumber)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// QueryNearest scans embeddings of the given source type and returns those
// within maxDistance of the query vector, closest first, at most topK.
func (s *VectorStore) QueryNearest(ctx context.Context, sourceType string, vector []float32, maxDistance float32, topK int) ([]*core.Neighbor, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector required", storage.ErrInvalidQuery)
	}

	var results []*core.Neighbor
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var embedding *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				embedding, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if embedding == nil || embedding.SourceType != sourceType {
				continue
			}

			distance := cosineDistance(vector, embedding.Vector)
			if distance <= maxDistance {
				results = append(results, &core.Neighbor{
					Embedding: embedding,
					Distance:  distance,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by distance ascending, most similar first.
	slices.SortFunc(results, func(a, b *core.Neighbor) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// GetEmbedding retrieves a single embedding record by ID.
func (s *VectorStore) GetEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalEmbeddingRecord(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// cosineDistance calculates 1 - cosine similarity of two vectors.
// Mismatched lengths are compared over the shorter prefix; a zero vector is
// maximally distant.
func cosineDistance(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float32
	for i := 0; i < minLen; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 1
	}

	similarity := dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
	return 1 - similarity
}
