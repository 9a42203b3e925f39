package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/dealscope/backend/internal/domain"
)

// statusError carries the HTTP status of a failed Qdrant call so callers
// can distinguish "not found" from real failures.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned status %d: %s", e.code, e.body)
}

func asStatusError(err error, target **statusError) bool {
	return errors.As(err, target)
}

// doJSON executes a request with bounded retries on transient failures
// (transport errors, 429, 5xx). Other non-2xx statuses fail immediately.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", domain.ErrCollaborator, ctx.Err())
			}
			if c.debug {
				log.Printf("[QDRANT] %s %s failed (attempt %d): %v", method, url, attempt, err)
			}
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if c.debug {
				log.Printf("[QDRANT] %s %s status %d (attempt %d)", method, url, resp.StatusCode, attempt)
			}
			lastErr = &statusError{code: resp.StatusCode, body: string(respBody)}
			time.Sleep(exponentialBackoff(attempt))
			continue
		}
		if resp.StatusCode >= 300 {
			return &statusError{code: resp.StatusCode, body: string(respBody)}
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("%w: decode response: %v", domain.ErrCollaborator, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %v", domain.ErrCollaborator, lastErr)
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}
