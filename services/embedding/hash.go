package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultDimensions is the default vector size for the hash backend.
const DefaultDimensions = 256

// HashModel identifies the deterministic backend in metrics and logs.
const HashModel = "hash-bow-v1"

// stopwords excluded from tokenization. Governance principles are short, so
// function words dominate raw token overlap; dropping them keeps similarity
// driven by content terms.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "must": {}, "of": {}, "on": {}, "or": {}, "shall": {},
	"should": {}, "that": {}, "the": {}, "their": {}, "to": {}, "with": {},
}

// HashEmbedder is a deterministic bag-of-words embedder using FNV-1a feature
// hashing. The same text always produces the same vector, across processes and
// runs, which the retrieval and confidence tests depend on. It is not a
// semantic model; it measures content-term overlap.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a deterministic embedder with the given vector size.
// Non-positive dimensions fall back to DefaultDimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed generates a signed bag-of-words vector for the text. Empty or
// stopword-only text yields the zero vector; Cosine handles that as 0.0.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dimensions)

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		index := int(sum % uint64(e.dimensions))
		// Use a hash bit for the sign so distinct tokens roughly cancel
		// instead of accumulating in the positive orthant.
		if sum&(1<<63) != 0 {
			vector[index]--
		} else {
			vector[index]++
		}
	}

	return vector, nil
}

// Dimensions returns the embedding dimension
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the model identifier used by this embedder
func (e *HashEmbedder) Model() string {
	return HashModel
}

// tokenize lowercases, splits on non-alphanumeric runes, drops stopwords, and
// folds trailing plurals so "rights" and "right" share a feature.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, skip := stopwords[field]; skip {
			continue
		}
		if len(field) > 3 && strings.HasSuffix(field, "s") && !strings.HasSuffix(field, "ss") {
			field = field[:len(field)-1]
		}
		tokens = append(tokens, field)
	}
	return tokens
}
