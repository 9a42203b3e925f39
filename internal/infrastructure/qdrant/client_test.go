package qdrant

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

func newTestClient(serverURL string) *Client {
	return NewClient(Config{URL: serverURL, Dimension: 4, Timeout: 2 * time.Second})
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{URL: "http://localhost:6333/"})

	assert.Equal(t, "http://localhost:6333", client.baseURL)
	assert.Equal(t, 1536, client.dimension)
	assert.NotNil(t, client.httpClient)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, exponentialBackoff(1))
	assert.Equal(t, 1000*time.Millisecond, exponentialBackoff(2))
	assert.Equal(t, 1500*time.Millisecond, exponentialBackoff(3))
}

func TestReplaceCollection(t *testing.T) {
	var deleted, created, upserted atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/collections/metro_deals":
			deleted.Store(true)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/metro_deals":
			created.Store(true)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			vectors := body["vectors"].(map[string]any)
			assert.Equal(t, "Cosine", vectors["distance"])
			assert.Equal(t, float64(3), vectors["size"])
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/metro_deals/points":
			upserted.Store(true)
			assert.Equal(t, "true", r.URL.Query().Get("wait"))
			var body struct {
				Points []struct {
					ID      string         `json:"id"`
					Vector  []float64      `json:"vector"`
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Points, 1)
			assert.NotEmpty(t, body.Points[0].ID)
			assert.Equal(t, "Butter", body.Points[0].Payload["name"])
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	deals := []domain.Deal{{Store: "Metro", Category: "Dairy", Name: "Butter", Price: "$4.99"}}
	vectors := [][]float64{{0.1, 0.2, 0.3}}

	err := client.ReplaceCollection(context.Background(), "Metro", deals, vectors)
	require.NoError(t, err)
	assert.True(t, deleted.Load())
	assert.True(t, created.Load())
	assert.True(t, upserted.Load())
}

func TestReplaceCollection_LengthMismatch(t *testing.T) {
	client := newTestClient("http://unused")
	err := client.ReplaceCollection(context.Background(), "Metro", []domain.Deal{{Name: "Butter"}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestReplaceCollection_EmptyBatchKeepsConfiguredDimension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/metro_deals" {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			vectors := body["vectors"].(map[string]any)
			assert.Equal(t, float64(4), vectors["size"])
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.ReplaceCollection(context.Background(), "Metro", nil, nil)
	require.NoError(t, err)
}

func TestQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/metro_deals/points/search", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["limit"])
		assert.Equal(t, true, body["with_payload"])

		resp := map[string]any{
			"result": []map[string]any{
				{
					"score": 0.91,
					"payload": map[string]any{
						"store": "Metro", "name": "Butter", "price": "$4.99",
						"unit_price": 1.0992, "unit_price_class": "per_100g",
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	hits, err := client.Query(context.Background(), "Metro", []float64{0.1, 0.2}, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.91, hits[0].Score)
	assert.Equal(t, "Butter", hits[0].Deal.Name)
	require.NotNil(t, hits[0].Deal.UnitPrice)
	assert.Equal(t, domain.UnitClassPer100g, hits[0].Deal.UnitPrice.Class)
}

func TestHasCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/metro_deals" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	exists, err := client.HasCollection(context.Background(), "Metro")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.HasCollection(context.Background(), "Ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCountDeals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/metro_deals" {
			json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{"points_count": 42},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	count, err := client.CountDeals(context.Background(), "Metro")
	require.NoError(t, err)
	assert.Equal(t, 42, count)

	_, err = client.CountDeals(context.Background(), "Ghost")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestListStores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"collections": []map[string]any{
					{"name": "produce_depot_deals"},
					{"name": "metro_deals"},
					{"name": "unrelated_collection"},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stores, err := client.ListStores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Metro", "Produce Depot"}, stores)
}

func TestDoJSON_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	exists, err := client.HasCollection(context.Background(), "Metro")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoJSON_ExhaustedRetriesAreCollaboratorErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Query(context.Background(), "Metro", []float64{0.1}, 5)
	assert.ErrorIs(t, err, domain.ErrCollaborator)
}

func TestDoJSON_ClientErrorsDoNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Query(context.Background(), "Metro", []float64{0.1}, 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCollaborator)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoJSON_SendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, APIKey: "secret"})
	_, err := client.HasCollection(context.Background(), "Metro")
	require.NoError(t, err)
}
