package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCosineReflexivity(t *testing.T) {
	e := NewHashEmbedder(256)
	vector, err := e.Embed(context.Background(), "users have the right to privacy")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, Cosine(vector, vector), 1e-9)
}

func TestCosineSymmetry(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()

	a, err := e.Embed(ctx, "data protection rights")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "encryption is required for all storage")
	require.NoError(t, err)

	assert.Equal(t, Cosine(a, b), Cosine(b, a))
}

func TestCosineZeroVectorSafety(t *testing.T) {
	zero := make([]float32, 8)
	other := []float32{1, 0, 0, 0, 0, 0, 0, 0}

	assert.Equal(t, 0.0, Cosine(zero, other))
	assert.Equal(t, 0.0, Cosine(other, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
}

func TestCosineMismatchedLengths(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestHashEmbedderDeterminism(t *testing.T) {
	ctx := context.Background()
	first := NewHashEmbedder(256)
	second := NewHashEmbedder(256)

	a, err := first.Embed(ctx, "Users have the right to privacy and data protection")
	require.NoError(t, err)
	b, err := second.Embed(ctx, "Users have the right to privacy and data protection")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashEmbedderDimensions(t *testing.T) {
	assert.Equal(t, 128, NewHashEmbedder(128).Dimensions())
	assert.Equal(t, DefaultDimensions, NewHashEmbedder(0).Dimensions())

	vector, err := NewHashEmbedder(64).Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vector, 64)
}

func TestHashEmbedderEmptyTextIsZeroVector(t *testing.T) {
	e := NewHashEmbedder(32)

	vector, err := e.Embed(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 0.0, Cosine(vector, vector))
}

func TestHashEmbedderOverlapBeatsUnrelated(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()

	principle, err := e.Embed(ctx, "Users have the right to privacy and data protection")
	require.NoError(t, err)
	related, err := e.Embed(ctx, "data protection rights")
	require.NoError(t, err)
	unrelated, err := e.Embed(ctx, "rotate signing keys quarterly")
	require.NoError(t, err)

	assert.Greater(t, Cosine(principle, related), Cosine(principle, unrelated))
	assert.GreaterOrEqual(t, Cosine(principle, related), 0.5)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lowercase and split", "Data Protection!", []string{"data", "protection"}},
		{"stopwords dropped", "the right to privacy", []string{"right", "privacy"}},
		{"plural folded", "rights of users", []string{"right", "user"}},
		{"double s kept", "access class", []string{"access", "class"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAIEmbedderRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(OpenAIConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenAIEmbedderCachesResults(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		embedding := make([]float32, 4)
		embedding[0] = 1
		resp := map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "embedding": embedding, "index": 0},
			},
			"model": "text-embedding-3-small",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Dimensions: 4,
		CacheSize:  16,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := e.Embed(ctx, "cache me")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "cache me")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, e.CacheLen())
}
