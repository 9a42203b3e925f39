package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dealscope/backend/internal/domain"
)

const maxRetries = 3

// Client calls an OpenAI-compatible embeddings endpoint. It implements
// domain.Embedder.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// Config configures the embeddings client.
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// NewClient creates an embeddings client with rate limiting and retries.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       model,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 10),
	}
}

// SetDebug enables request logging.
func (c *Client) SetDebug(debug bool) { c.debug = debug }

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds a batch of texts in one request, preserving order.
// Transient failures (transport, 429, 5xx) are retried with backoff;
// anything else fails immediately.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string]any{
		"input": texts,
		"model": c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrCollaborator, ctx.Err())
			}
			if c.debug {
				log.Printf("[EMBED] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if c.debug {
				log.Printf("[EMBED] status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))
			}
			lastErr = fmt.Errorf("embeddings endpoint returned status %d", resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: embeddings endpoint returned status %d: %s",
				domain.ErrCollaborator, resp.StatusCode, string(body))
		}

		var out struct {
			Data []struct {
				Index     int       `json:"index"`
				Embedding []float64 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", domain.ErrCollaborator, err)
		}
		if len(out.Data) != len(texts) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
				domain.ErrCollaborator, len(texts), len(out.Data))
		}

		vectors := make([][]float64, len(texts))
		for _, d := range out.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				return nil, fmt.Errorf("%w: embedding index %d out of range", domain.ErrCollaborator, d.Index)
			}
			vectors[d.Index] = d.Embedding
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrCollaborator, lastErr)
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}
