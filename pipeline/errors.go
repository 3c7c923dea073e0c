package pipeline

import "errors"

var (
	// ErrRecordLogRequired is returned when a nil record log is passed to NewPipeline.
	ErrRecordLogRequired = errors.New("record log is required")

	// ErrVectorStoreRequired is returned when a nil vector store is passed to NewPipeline.
	ErrVectorStoreRequired = errors.New("vector store is required")

	// ErrEmbedderRequired is returned when a nil embedder is passed to NewPipeline.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid pipeline config")
)
