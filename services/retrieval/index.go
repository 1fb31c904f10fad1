// Package retrieval implements the in-memory retrieval index: a build-once
// embedding cache over the principle corpus queried by similarity per request.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/upb/governance-engine/models"
	"github.com/upb/governance-engine/services"
	"github.com/upb/governance-engine/services/embedding"
)

// DefaultThreshold is the minimum similarity a principle must reach to be
// surfaced. Preserved from the source system; not derived from first
// principles.
const DefaultThreshold = 0.5

// indexEntry pairs a principle with its embedding. Entries keep corpus
// insertion order so ranking ties stay reproducible.
type indexEntry struct {
	principle models.ConstitutionalPrinciple
	vector    []float32
}

// Index maps principles to embeddings and answers similarity queries.
// The entry slice is written only under mu; reads during Retrieve take the
// read lock, so post-build inserts never expose a partial entry.
type Index struct {
	mu        sync.RWMutex
	entries   []indexEntry
	embedder  embedding.Embedder
	threshold float64
	logger    *zap.Logger
}

// NewIndex creates an empty index over the given embedder. A threshold
// outside (0,1] falls back to DefaultThreshold.
func NewIndex(embedder embedding.Embedder, threshold float64, logger *zap.Logger) *Index {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Index{
		embedder:  embedder,
		threshold: threshold,
		logger:    logger,
	}
}

// Build validates and embeds every principle in the corpus. It fails fast on
// the first malformed record or dimension mismatch; partial builds are
// discarded.
func (idx *Index) Build(ctx context.Context, corpus []models.ConstitutionalPrinciple) error {
	entries := make([]indexEntry, 0, len(corpus))
	seen := make(map[string]struct{}, len(corpus))

	for _, principle := range corpus {
		if err := principle.Validate(); err != nil {
			return services.NewDomainError(services.ErrorTypeConfiguration, "corpus contains invalid principle", err).
				WithDetail("principle_id", principle.ID)
		}
		if _, dup := seen[principle.ID]; dup {
			return services.NewDomainError(services.ErrorTypeConfiguration, "duplicate principle ID", nil).
				WithDetail("principle_id", principle.ID)
		}
		seen[principle.ID] = struct{}{}

		vector, err := idx.embedder.Embed(ctx, principle.Content)
		if err != nil {
			return fmt.Errorf("failed to embed principle %s: %w", principle.ID, err)
		}
		if len(vector) != idx.embedder.Dimensions() {
			return services.NewDomainError(services.ErrorTypeConfiguration, "embedding dimensionality mismatch", nil).
				WithDetail("principle_id", principle.ID).
				WithDetail("got", len(vector)).
				WithDetail("want", idx.embedder.Dimensions())
		}

		entries = append(entries, indexEntry{principle: principle, vector: vector})
	}

	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()

	idx.logger.Info("retrieval index built",
		zap.Int("principles", len(entries)),
		zap.Int("dimensions", idx.embedder.Dimensions()),
		zap.Float64("threshold", idx.threshold))

	return nil
}

// Add inserts one principle after the initial build. Inserts are serialized
// under the write lock; concurrent Retrieve calls see either the old or the
// new entry set, never a partial write.
func (idx *Index) Add(ctx context.Context, principle models.ConstitutionalPrinciple) error {
	if err := principle.Validate(); err != nil {
		return services.NewDomainError(services.ErrorTypeConfiguration, "invalid principle", err).
			WithDetail("principle_id", principle.ID)
	}

	vector, err := idx.embedder.Embed(ctx, principle.Content)
	if err != nil {
		return fmt.Errorf("failed to embed principle %s: %w", principle.ID, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, entry := range idx.entries {
		if entry.principle.ID == principle.ID {
			return services.NewDomainError(services.ErrorTypeConfiguration, "duplicate principle ID", nil).
				WithDetail("principle_id", principle.ID)
		}
	}
	idx.entries = append(idx.entries, indexEntry{principle: principle, vector: vector})
	return nil
}

// Retrieve embeds the query, scores it against every stored principle, drops
// scores below the threshold, ranks the remainder by similarity descending
// (ties keep corpus insertion order), and truncates to topK. An empty corpus
// yields an empty slice and nil error — the orchestrator's fallback signal.
func (idx *Index) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievalResult, error) {
	if topK <= 0 {
		return []models.RetrievalResult{}, nil
	}

	queryVector, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	idx.mu.RLock()
	results := make([]models.RetrievalResult, 0, len(idx.entries))
	for _, entry := range idx.entries {
		score := embedding.Cosine(queryVector, entry.vector)
		if score < idx.threshold {
			continue
		}
		results = append(results, models.RetrievalResult{
			PrincipleID: entry.principle.ID,
			Content:     entry.principle.Content,
			Category:    entry.principle.Category,
			Similarity:  score,
		})
	}
	idx.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}

	idx.logger.Debug("retrieval completed",
		zap.String("query", query),
		zap.Int("top_k", topK),
		zap.Int("matches", len(results)))

	return results, nil
}

// Size returns the number of principles in the index
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Threshold returns the active retrieval similarity threshold
func (idx *Index) Threshold() float64 {
	return idx.threshold
}
