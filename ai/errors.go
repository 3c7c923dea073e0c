package ai

import "errors"

var (
	// ErrEmptyText is returned when an embedding is requested for text
	// that is empty or contains only whitespace.
	ErrEmptyText = errors.New("text is empty or whitespace-only")

	// ErrGeneration is returned when the embedding backend fails to
	// produce a vector.
	ErrGeneration = errors.New("embedding generation failed")
)
