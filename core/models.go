package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EmbeddingIDFor generates a deterministic ID for an embedding record from its
// source type, source record ID, and the embedded text. Re-embedding the same
// content for the same source always yields the same ID.
func EmbeddingIDFor(sourceType string, sourceId ID, content string) ID {
	return IDFromContent(fmt.Sprintf("%s/%d/%s", sourceType, sourceId, content))
}

// SourceTypeMessage is the source type discriminator for embeddings of
// conversational records.
const SourceTypeMessage = "Message"

// Role identifies the author kind of a record.
type Role int

const (
	// RoleUser represents a human user.
	RoleUser Role = iota + 1
	// RoleAssistant represents an AI assistant.
	RoleAssistant
	// RoleSystem represents system-injected content.
	RoleSystem
	// RoleTool represents tool output.
	RoleTool
)

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleSystem:
		return "system"
	case RoleTool:
		return "tool"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a role name to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	case "system":
		return RoleSystem, nil
	case "tool":
		return RoleTool, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Record represents a single message in the append-only record log.
// SequenceNumber establishes a total order over all records across all
// conversations and is only ever assigned at append time.
type Record struct {
	Id             ID
	ConversationId string
	Role           Role
	AuthorName     string // optional
	Content        string // may be empty; empty records are never embedded
	SequenceNumber uint64
	CreatedAt      time.Time
	EmbeddingId    ID // 0 until the pipeline links an embedding, set exactly once
}

// Linked reports whether the record has been linked to an embedding.
func (r *Record) Linked() bool {
	return r.EmbeddingId != 0
}

// EmbeddingRecord is the persisted vector representation of a Record's content.
// Content is a verbatim copy of the embedded text, kept for audit and
// re-embedding. EmbeddingRecords are immutable after creation.
type EmbeddingRecord struct {
	Id         ID
	SourceType string
	SourceId   ID
	Content    string
	Vector     []float32 // fixed length per generator configuration
	CreatedAt  time.Time
}

// Neighbor is an embedding record paired with its distance to a query vector.
// Lower distance means more similar.
type Neighbor struct {
	Embedding *EmbeddingRecord
	Distance  float32
}

// IsBlank reports whether text is empty or whitespace only.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
