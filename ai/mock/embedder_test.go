package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/svnscha/knowledge/ai"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestMockEmbedderDeterminism(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "the sky is blue")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	second, err := embedder.EmbedText(ctx, "the sky is blue")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	if len(first) != DefaultDimension {
		t.Fatalf("Expected dimension %d, got %d", DefaultDimension, len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Vectors differ at %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestMockEmbedderUnitNorm(t *testing.T) {
	embedder := NewMockEmbedder()

	vector, err := embedder.EmbedText(context.Background(), "stock market trends")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if math.Abs(sumSquares-1.0) > 1e-5 {
		t.Fatalf("Expected unit vector, squared norm = %f", sumSquares)
	}
}

func TestMockEmbedderSimilarityReflectsVocabulary(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	sky, err := embedder.EmbedText(ctx, "The sky is blue")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	query, err := embedder.EmbedText(ctx, "What color is the sky?")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	stocks, err := embedder.EmbedText(ctx, "stock market trends")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}

	// {color, sky} and {sky, blue} share one of two tokens each.
	if got := cosine(query, sky); math.Abs(got-0.5) > 1e-5 {
		t.Fatalf("Expected cosine 0.5 for overlapping texts, got %f", got)
	}
	// Disjoint vocabulary is orthogonal.
	if got := cosine(query, stocks); math.Abs(got) > 1e-5 {
		t.Fatalf("Expected cosine 0 for disjoint texts, got %f", got)
	}
}

func TestMockEmbedderBlankText(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	if _, err := embedder.EmbedText(ctx, "   "); !errors.Is(err, ai.ErrEmptyText) {
		t.Fatalf("Expected ErrEmptyText, got %v", err)
	}
	if _, err := embedder.EmbedTexts(ctx, []string{"fine", ""}); !errors.Is(err, ai.ErrEmptyText) {
		t.Fatalf("Expected ErrEmptyText in batch, got %v", err)
	}
}

func TestMockEmbedderStopwordOnlyText(t *testing.T) {
	embedder := NewMockEmbedder()

	// Falls back to the unfiltered words instead of a zero vector.
	vector, err := embedder.EmbedText(context.Background(), "it is what it is")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		t.Fatal("Expected non-zero vector for stopword-only text")
	}
}

func TestMockEmbedderBatchOrder(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	texts := []string{"first message", "second message", "third message"}
	batch, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		t.Fatalf("EmbedTexts failed: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("Expected %d vectors, got %d", len(texts), len(batch))
	}
	for i, text := range texts {
		single, err := embedder.EmbedText(ctx, text)
		if err != nil {
			t.Fatalf("EmbedText failed: %v", err)
		}
		if cosine(batch[i], single) < 0.999 {
			t.Fatalf("Batch vector %d does not match single embedding", i)
		}
	}

	empty, err := embedder.EmbedTexts(ctx, nil)
	if err != nil {
		t.Fatalf("EmbedTexts on empty input failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected empty result, got %d vectors", len(empty))
	}
}

func TestMockEmbedderInjectionAndCallCount(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	wantErr := errors.New("backend down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	if _, err := embedder.EmbedText(ctx, "anything"); !errors.Is(err, wantErr) {
		t.Fatalf("Expected injected error, got %v", err)
	}
	if embedder.CallCount() != 1 {
		t.Fatalf("Expected call count 1, got %d", embedder.CallCount())
	}

	embedder.Reset()
	if embedder.CallCount() != 0 {
		t.Fatalf("Expected call count 0 after reset, got %d", embedder.CallCount())
	}
	if _, err := embedder.EmbedText(ctx, "anything"); err != nil {
		t.Fatalf("Expected default behavior after reset, got %v", err)
	}
}
