// Package embedding provides text embedding backends and vector similarity
// for the retrieval index. The Embedder interface is a capability boundary:
// the deterministic hash backend serves tests and offline operation, the
// OpenAI backend serves production.
package embedding

import (
	"context"
	"math"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates the embedding for a single text. Implementations must be
	// deterministic for the same text and configuration, or document otherwise.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension
	Dimensions() int

	// Model returns the model identifier used by this embedder
	Model() string
}

// Cosine computes cosine similarity between two vectors: dot(a,b)/(‖a‖·‖b‖).
// If either vector has zero norm, or the lengths differ, it returns 0.0 —
// never NaN and never a panic. The zero-norm case is load-bearing for corpus
// entries with degenerate embeddings.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
