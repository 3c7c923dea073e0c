package badger

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/svnscha/knowledge/core"
)

// Key prefixes for different data types
const (
	recordPrefix        = "msgrec"
	recordSeqPrefix     = "msgseq"
	recordPendingPrefix = "msgpend"
	recordConvPrefix    = "msgconv"
	embeddingPrefix     = "embrec"
	recordSeqAllocator  = "msgrecseq"
)

// makeRecordKey generates a key for a record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", recordPrefix, id))
}

// makeSeqKey generates a composite key for the sequence index.
// Format: prefix:sequenceNumber. BigEndian so lexicographic iteration
// yields ascending sequence order.
func makeSeqKey(seq uint64) []byte {
	return makeUint64Key(recordSeqPrefix, seq)
}

// makePendingKey generates a composite key for the pending index.
// Format: prefix:sequenceNumber. Entries exist only for unembedded records
// with non-blank content and are removed when the embedding is linked.
func makePendingKey(seq uint64) []byte {
	return makeUint64Key(recordPendingPrefix, seq)
}

// makeConversationKey generates a composite key for the conversation index.
// Format: prefix:conversationHash:sequenceNumber.
func makeConversationKey(conversationId string, seq uint64) []byte {
	prefix := makePartialConversationKey(conversationId)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialConversationKey generates the prefix shared by all entries of
// one conversation.
func makePartialConversationKey(conversationId string) []byte {
	return makeUint64Key(recordConvPrefix, uint64(core.IDFromContent(conversationId)))
}

// makeEmbeddingKey generates a key for an embedding record by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, id))
}

// makeUint64Key builds prefix:value with the value in BigEndian order so
// lexicographic sort matches numeric sort.
func makeUint64Key(prefix string, value uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], value)
	return buf
}

// maxSeqKey returns the highest possible key of a BigEndian uint64 index,
// used as the starting point for reverse iteration.
func maxSeqKey(prefix string) []byte {
	return makeUint64Key(prefix, math.MaxUint64)
}
