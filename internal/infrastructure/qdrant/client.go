package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealscope/backend/internal/domain"
)

// collectionSuffix marks collections owned by this system, one per store.
const collectionSuffix = "_deals"

const maxRetries = 3

// Client is a REST client to a Qdrant instance, holding one cosine-distance
// collection per store. It implements domain.DealStore.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	dimension  int
	debug      bool
}

// Config configures the Qdrant client.
type Config struct {
	URL       string
	APIKey    string
	Dimension int
	Timeout   time.Duration
}

// NewClient creates a Qdrant-backed deal store client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = 1536
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		dimension:  dimension,
	}
}

// SetDebug enables request logging.
func (c *Client) SetDebug(debug bool) { c.debug = debug }

// ReplaceCollection drops the store's collection, recreates it, and uploads
// the full batch of deals with their vectors and filter metadata.
func (c *Client) ReplaceCollection(ctx context.Context, store string, deals []domain.Deal, vectors [][]float64) error {
	if len(deals) != len(vectors) {
		return fmt.Errorf("%w: deals and vectors length mismatch", domain.ErrInvalidRequest)
	}
	name := collectionName(store)

	// Best-effort delete; a missing collection is fine.
	_ = c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", c.baseURL, name), nil, nil)

	dimension := c.dimension
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}
	create := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", c.baseURL, name), create, nil); err != nil {
		return err
	}

	if len(deals) == 0 {
		return nil
	}

	points := make([]map[string]any, len(deals))
	for i := range deals {
		points[i] = map[string]any{
			"id":      uuid.NewString(),
			"vector":  vectors[i],
			"payload": dealPayload(&deals[i]),
		}
	}
	body := map[string]any{"points": points}
	return c.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, name), body, nil)
}

// Query runs a nearest-neighbor search over the store's collection.
func (c *Client) Query(ctx context.Context, store string, vector []float64, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collectionName(store))
	if err := c.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{
			Deal:  dealFromPayload(store, r.Payload),
			Score: r.Score,
		})
	}
	return hits, nil
}

// HasCollection reports whether the store's collection exists.
func (c *Client) HasCollection(ctx context.Context, store string) (bool, error) {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collectionName(store))
	err := c.doJSON(ctx, http.MethodGet, url, nil, nil)
	if err == nil {
		return true, nil
	}
	var se *statusError
	if asStatusError(err, &se) && se.code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// CountDeals returns the number of points in the store's collection.
func (c *Client) CountDeals(ctx context.Context, store string) (int, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collectionName(store))
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		var se *statusError
		if asStatusError(err, &se) && se.code == http.StatusNotFound {
			return 0, domain.ErrNoData
		}
		return 0, err
	}
	return resp.Result.PointsCount, nil
}

// ListStores lists every store with a deals collection, recovering store
// names from the collection naming scheme.
func (c *Client) ListStores(ctx context.Context) ([]string, error) {
	var resp struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/collections", c.baseURL), nil, &resp); err != nil {
		return nil, err
	}

	var stores []string
	for _, col := range resp.Result.Collections {
		if strings.HasSuffix(col.Name, collectionSuffix) {
			stores = append(stores, storeName(col.Name))
		}
	}
	sort.Strings(stores)
	return stores, nil
}

// DeleteCollection removes the store's collection, ignoring absence.
func (c *Client) DeleteCollection(ctx context.Context, store string) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collectionName(store))
	err := c.doJSON(ctx, http.MethodDelete, url, nil, nil)
	var se *statusError
	if asStatusError(err, &se) && se.code == http.StatusNotFound {
		return nil
	}
	return err
}
