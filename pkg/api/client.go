package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/scrapeworks/scrapeworks-mcp/internal/logging"
)

// maxResponseBody caps how much of an upstream response is read into memory.
const maxResponseBody = 4 << 20

// Client talks to the ScrapeWorks control-plane API. Construct with NewClient;
// the zero value is not usable.
//
// The bearer-token slot is mutable: a session can refresh its credential
// mid-connection and the replacement is honored on the next attempt.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	policy  RetryPolicy
	logger  *slog.Logger

	mu    sync.RWMutex
	token string

	// Injection points for deterministic tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the static API key used when no bearer token is present.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBearerToken seeds the mutable bearer-token slot.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger configures structured logging for the attempt loop.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		policy:  DefaultRetryPolicy(),
		logger:  logging.NewNop(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetBearerToken replaces the credential in place. Safe to call while requests
// are in flight; header resolution happens fresh on every attempt.
func (c *Client) SetBearerToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// authHeader resolves the Authorization value for one attempt. A bearer token
// wins over the static key so OAuth sessions are never downgraded.
func (c *Client) authHeader() (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return "Bearer " + token, nil
	}
	if c.apiKey != "" {
		return "ApiKey " + c.apiKey, nil
	}
	return "", ErrNoCredentials
}

// do executes one logical request to completion. Idempotent methods get
// MaxRetries+1 attempts; POST mutates upstream state and is never repeated.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	attempts := 1
	if method != http.MethodPost {
		attempts = c.policy.MaxRetries + 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		auth, err := c.authHeader()
		if err != nil {
			return err
		}

		resp, respBody, err := c.dispatch(ctx, method, endpoint, query, payload, auth)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				lastErr = &TimeoutError{Endpoint: endpoint, Budget: c.policy.RequestTimeout}
			} else {
				lastErr = fmt.Errorf("%s %s: %w", method, endpoint, err)
			}
			if attempt+1 < attempts {
				if err := c.backoff(ctx, attempt, nil, method, path); err != nil {
					return err
				}
				continue
			}
			return lastErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out != nil && len(respBody) > 0 {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("decode response from %s: %w", endpoint, err)
				}
			}
			return nil
		}

		cerr := Classify(endpoint, resp, respBody)

		var apiErr *APIError
		if errors.As(cerr, &apiErr) && (apiErr.IsUnauthorized() || apiErr.IsForbidden()) {
			return cerr
		}

		var retryAfter *time.Duration
		var rle *RateLimitError
		if errors.As(cerr, &rle) {
			retryAfter = rle.RetryAfter
		}

		if apiErr != nil && apiErr.Retryable() && attempt+1 < attempts {
			lastErr = cerr
			if err := c.backoff(ctx, attempt, retryAfter, method, path); err != nil {
				return err
			}
			continue
		}
		return cerr
	}
	return lastErr
}

// dispatch runs a single attempt under the policy's wall-clock deadline and
// returns the response with its body fully read.
func (c *Client) dispatch(ctx context.Context, method, endpoint string, query url.Values, payload []byte, auth string) (*http.Response, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.policy.RequestTimeout)
	defer cancel()

	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", auth)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func (c *Client) backoff(ctx context.Context, attempt int, retryAfter *time.Duration, method, path string) error {
	d := c.policy.delay(attempt, retryAfter)
	c.logger.Debug("retrying request",
		"method", method,
		"path", path,
		"attempt", attempt+1,
		"delay", d,
	)
	return c.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
