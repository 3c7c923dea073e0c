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


package core

import (
	"fmt"
	"time"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - ConversationId must not be empty
//   - Role must be valid (user, assistant, system, tool)
//   - CreatedAt must not be in the future
//
// NOT validated (by design):
//   - Content (empty content is allowed; such records are simply never embedded)
//   - SequenceNumber and Id (0 until assigned at append time)
//   - EmbeddingId (0 until the pipeline links an embedding)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.ConversationId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyConversation)
	}

	if err := ValidateRole(record.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if !IsValidTimestamp(record.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - SourceType must not be empty
//   - SourceId must reference a record
//   - Vector must not be empty
//   - Content must not be blank (blank text is never embedded)
func ValidateEmbeddingRecord(embedding *EmbeddingRecord) error {
	if embedding == nil {
		return fmt.Errorf("%w: embedding is nil", ErrInvalidEmbeddingRecord)
	}

	if embedding.SourceType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, ErrEmptySourceType)
	}

	if embedding.SourceId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, ErrZeroSource)
	}

	if len(embedding.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, ErrEmptyVector)
	}

	if IsBlank(embedding.Content) {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, ErrEmptyEmbeddedContent)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
}

// IsValidTimestamp checks if a timestamp is valid (zero or not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return ts.IsZero() || !ts.After(time.Now())
}
