package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/svnscha/knowledge/ai"
	"github.com/svnscha/knowledge/core"
)

// DefaultDimension is the dimensionality of vectors produced by the default
// deterministic behavior.
const DefaultDimension = 384

// stopwords are dropped during tokenization so that similarity reflects
// content words rather than filler.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true,
	"are": true, "was": true, "to": true, "of": true, "and": true,
	"in": true, "that": true, "have": true, "it": true, "for": true,
	"not": true, "on": true, "with": true, "as": true, "you": true,
	"do": true, "at": true, "this": true, "but": true, "by": true,
	"from": true, "what": true,
}

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding from the text's content words.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	if core.IsBlank(text) {
		return nil, ai.ErrEmptyText
	}
	return DeterministicVector(text, DefaultDimension), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if core.IsBlank(text) {
			return nil, ai.ErrEmptyText
		}
		vectors[i] = DeterministicVector(text, DefaultDimension)
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// DeterministicVector creates a normalized bag-of-words vector from text.
// Each content word hashes to one dimension, so texts sharing vocabulary have
// proportionally similar vectors and disjoint texts are orthogonal. The same
// text always produces the same vector.
func DeterministicVector(text string, dim int) []float32 {
	tokens := tokenize(text)

	vector := make([]float32, dim)
	for _, token := range tokens {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%uint32(dim)] += 1.0
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}

// tokenize lowercases the text, strips punctuation and drops stopwords.
// If every word is a stopword the unfiltered word list is used, so no
// non-blank text maps to the zero vector.
func tokenize(text string) []string {
	scrubbed := strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:\"'()[]{}—–-", r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))

	words := strings.Fields(scrubbed)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if !stopwords[word] {
			tokens = append(tokens, word)
		}
	}
	if len(tokens) == 0 {
		return words
	}
	return tokens
}
