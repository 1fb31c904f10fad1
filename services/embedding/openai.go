package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig holds configuration for the OpenAI embedding backend
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // Optional, defaults to OpenAI
	Model      string // Defaults to text-embedding-3-small
	Dimensions int    // Must match the chosen model
	CacheSize  int    // LRU memoization size, default 10000
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API with
// per-text LRU memoization. Memoization only changes cost, never semantics:
// the API is treated as deterministic per model revision, and any upstream
// non-determinism is documented here rather than hidden.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	cache      *lru.Cache[string, []float32]
	logger     *zap.Logger
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API
func NewOpenAIEmbedder(config OpenAIConfig, logger *zap.Logger) (*OpenAIEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai embedder requires an API key")
	}
	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}
	if config.Dimensions <= 0 {
		// text-embedding-3-small dimension
		config.Dimensions = 1536
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 10000
	}

	cache, err := lru.New[string, []float32](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      openai.EmbeddingModel(config.Model),
		dimensions: config.Dimensions,
		cache:      cache,
		logger:     logger,
	}, nil
}

// Embed generates the embedding for a single text, consulting the cache first.
// Timeouts are the caller's responsibility through ctx.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	vector := resp.Data[0].Embedding
	if len(vector) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension %d does not match configured %d", len(vector), e.dimensions)
	}

	e.cache.Add(text, vector)
	e.logger.Debug("embedded text via openai",
		zap.String("model", string(e.model)),
		zap.Int("cache_size", e.cache.Len()))

	return vector, nil
}

// Dimensions returns the embedding dimension
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the model identifier used by this embedder
func (e *OpenAIEmbedder) Model() string {
	return string(e.model)
}

// CacheLen returns the number of memoized embeddings
func (e *OpenAIEmbedder) CacheLen() int {
	return e.cache.Len()
}
