package search

import "errors"

var (
	// ErrRecordLogRequired is returned when a nil record log is passed to NewSearcher.
	ErrRecordLogRequired = errors.New("record log is required")

	// ErrVectorStoreRequired is returned when a nil vector store is passed to NewSearcher.
	ErrVectorStoreRequired = errors.New("vector store is required")

	// ErrEmbedderRequired is returned when a nil embedder is passed to NewSearcher.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmptyQuery is returned when the query text is empty or whitespace-only.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid search config")
)
