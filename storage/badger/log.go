package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/storage"
)

// RecordLog implements storage.RecordLog for BadgerDB.
//
// Sequence numbers come from a single BadgerDB sequence, the only write
// contention point of the log. Three secondary indexes are maintained per
// record: the global sequence index, the per-conversation index, and the
// pending index (unembedded records with non-blank content). The pending
// entry is removed by the vector store when an embedding is linked.
type RecordLog struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.RecordLog = (*RecordLog)(nil)

// NewRecordLog creates a new RecordLog.
func NewRecordLog(backend *Backend) (*RecordLog, error) {
	seq, err := backend.GetSequence(recordSeqAllocator)
	if err != nil {
		return nil, err
	}

	return &RecordLog{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the sequence allocator lease.
func (l *RecordLog) Close() error {
	return l.seq.Release()
}

// nextSequence returns the next sequence number, skipping the zero value
// BadgerDB sequences produce on first use.
func (l *RecordLog) nextSequence() (uint64, error) {
	next, err := l.seq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = l.seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return next, nil
}

// Append adds records to the log, assigning sequence numbers, IDs, and
// timestamps. A failed append may leave a gap in the sequence; it never
// reuses a number.
func (l *RecordLog) Append(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return nil, err
		}
	}

	err := l.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			next, err := l.nextSequence()
			if err != nil {
				return err
			}
			record.SequenceNumber = next
			record.Id = core.IDFromContent(fmt.Sprintf("%s/%d", record.ConversationId, next))
			if record.CreatedAt.IsZero() {
				record.CreatedAt = time.Now().UTC()
			}
			// Links are assigned by the pipeline only.
			record.EmbeddingId = 0

			if err := tx.Set(makeRecordKey(record.Id), storage.MarshalRecord(record)); err != nil {
				return err
			}

			idValue := storage.MarshalID(record.Id)
			if err := tx.Set(makeSeqKey(next), idValue); err != nil {
				return err
			}
			if err := tx.Set(makeConversationKey(record.ConversationId, next), idValue); err != nil {
				return err
			}
			if !core.IsBlank(record.Content) {
				if err := tx.Set(makePendingKey(next), idValue); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// ListPending returns unembedded records with non-blank content, ordered by
// sequence number ascending, at most limit items.
func (l *RecordLog) ListPending(ctx context.Context, limit int) ([]*core.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	var results []*core.Record
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPendingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(results) < limit; iter.Next() {
			record, err := l.resolveIndexEntry(tx, iter.Item())
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			// The index should never contain linked or blank records;
			// re-check so a stale entry cannot reach the pipeline.
			if record.Linked() || core.IsBlank(record.Content) {
				continue
			}
			results = append(results, record)
		}
		return nil
	}, false)

	return results, err
}

// ListByConversation returns all records of a conversation ordered by
// sequence number ascending.
func (l *RecordLog) ListByConversation(ctx context.Context, conversationId string) ([]*core.Record, error) {
	if conversationId == "" {
		return nil, fmt.Errorf("%w: conversation id required", storage.ErrInvalidQuery)
	}

	var results []*core.Record
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialConversationKey(conversationId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			record, err := l.resolveIndexEntry(tx, iter.Item())
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// ListRecent returns up to limit records, highest sequence number first.
func (l *RecordLog) ListRecent(ctx context.Context, limit int) ([]*core.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	prefix := []byte(recordSeqPrefix + ":")
	var results []*core.Record
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(maxSeqKey(recordSeqPrefix)); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}
			record, err := l.resolveIndexEntry(tx, iter.Item())
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecord retrieves a single record by ID.
func (l *RecordLog) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	var result *core.Record
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecords retrieves multiple records by their IDs.
func (l *RecordLog) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error) {
	var result []*core.Record
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// DeleteRecords removes records and their index entries. Linked embedding
// records are left untouched.
func (l *RecordLog) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	return l.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(id)
			record, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeSeqKey(record.SequenceNumber)); err != nil {
				return err
			}
			if err := tx.Delete(makeConversationKey(record.ConversationId, record.SequenceNumber)); err != nil {
				return err
			}
			if !record.Linked() && !core.IsBlank(record.Content) {
				if err := tx.Delete(makePendingKey(record.SequenceNumber)); err != nil {
					return err
				}
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// resolveIndexEntry reads the record an index entry points at.
// Returns nil for dangling entries.
func (l *RecordLog) resolveIndexEntry(tx *badger.Txn, item *badger.Item) (*core.Record, error) {
	var recordId core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		recordId, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return readRecord(tx, makeRecordKey(recordId))
}

// readRecord reads a record from the transaction.
func readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalRecord(val)
		return unmarshalErr
	})
	return record, err
}
