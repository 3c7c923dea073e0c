// Package mock provides a test double for the ai.Embedder interface.
//
// MockEmbedder runs fully in-process and produces deterministic vectors, so
// tests can assert on similarity relationships without an external embedding
// service. The default behavior hashes content words into a sparse bag-of-words
// vector: texts that share vocabulary yield vectors with positive cosine
// similarity, texts with disjoint vocabulary are orthogonal.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "the sky is blue")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("backend down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
package mock
