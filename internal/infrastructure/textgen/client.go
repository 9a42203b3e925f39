package textgen

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

// systemPrompt constrains the model to narrate the facts it is given.
// Every number it is allowed to mention is computed upstream.
const systemPrompt = `You are a helpful assistant that summarizes grocery deals across stores.

GUIDELINES:
1. Only use the prices, units, unit prices, and winners stated in the provided deals data. Never invent or recompute numbers.
2. When comparing, quote unit prices exactly as given and state which store is cheaper and why.
3. Use clean, simple markdown: short headings, bullet points, bold for key facts.
4. If the data says no results or insufficient data, say so plainly and suggest broader searches.
5. Keep proper spacing between numbers and symbols ("$0.99 each", not "$0.99each").`

// Client calls an OpenAI-compatible chat completions endpoint for the
// final phrasing of structured answers. It implements domain.TextGenerator.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	rateLimiter *rate.Limiter
	debug       bool
}

// Config configures the text-generation client.
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	MaxTokens         int
	Temperature       float64
	Timeout           time.Duration
	RequestsPerSecond float64
}

// NewClient creates a text-generation client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 5),
	}
}

// SetDebug enables request logging.
func (c *Client) SetDebug(debug bool) { c.debug = debug }

// Complete asks the model to phrase the given facts. The facts block is
// appended to the user prompt; the system prompt forbids invented numbers.
func (c *Client) Complete(ctx context.Context, prompt, facts string) (string, error) {
	user := prompt
	if facts != "" {
		user += "\n\nHere are the relevant grocery deals I found:\n" + facts
	}

	payload, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": user},
		},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrCollaborator, ctx.Err())
			}
			if c.debug {
				log.Printf("[TEXTGEN] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if c.debug {
				log.Printf("[TEXTGEN] status %d (attempt %d)", resp.StatusCode, attempt)
			}
			lastErr = fmt.Errorf("completions endpoint returned status %d", resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: completions endpoint returned status %d: %s",
				domain.ErrCollaborator, resp.StatusCode, string(body))
		}

		var out struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("%w: decode response: %v", domain.ErrCollaborator, err)
		}
		if len(out.Choices) == 0 {
			return "", fmt.Errorf("%w: no completion returned", domain.ErrCollaborator)
		}
		return out.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: %v", domain.ErrCollaborator, lastErr)
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}
