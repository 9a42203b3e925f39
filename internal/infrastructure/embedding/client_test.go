package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscope/backend/internal/domain"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key"})

	assert.Equal(t, "https://api.openai.com/v1", client.baseURL)
	assert.Equal(t, "text-embedding-3-small", client.model)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestEmbedBatch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"butter", "milk"}, body.Input)
		assert.Equal(t, "text-embedding-3-small", body.Model)

		// Out-of-order data entries must still land at the right index.
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{0.3, 0.4}},
				{"index": 0, "embedding": []float64{0.1, 0.2}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
	vectors, err := client.EmbedBatch(context.Background(), []string{"butter", "milk"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float64{0.3, 0.4}, vectors[1])
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused", APIKey: "test-key"})
	vectors, err := client.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbed_DelegatesToBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float64{0.5}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
	vector, err := client.Embed(context.Background(), "butter")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, vector)
}

func TestEmbedBatch_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float64{0.5}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", RequestsPerSecond: 100})
	_, err := client.EmbedBatch(context.Background(), []string{"butter"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedBatch_AuthFailureDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "bad-key"})
	_, err := client.EmbedBatch(context.Background(), []string{"butter"})
	assert.ErrorIs(t, err, domain.ErrCollaborator)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedBatch_CountMismatchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float64{0.5}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
	_, err := client.EmbedBatch(context.Background(), []string{"butter", "milk"})
	assert.ErrorIs(t, err, domain.ErrCollaborator)
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, exponentialBackoff(1))
	assert.Equal(t, 1000*time.Millisecond, exponentialBackoff(2))
}
