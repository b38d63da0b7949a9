package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a client against srv with instant, recorded sleeps.
func newTestClient(srv *httptest.Server, opts ...Option) (*Client, *[]time.Duration) {
	delays := &[]time.Duration{}
	opts = append([]Option{WithAPIKey("test-key")}, opts...)
	c := NewClient(srv.URL, opts...)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return c, delays
}

func TestClient_RetriesIdempotentUntilBudgetExhausted(t *testing.T) {
	for _, code := range []int{
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	} {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(code)
		}))

		c, delays := newTestClient(srv)
		err := c.do(context.Background(), http.MethodGet, "/agent/all", nil, nil, nil)
		srv.Close()

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, code, apiErr.StatusCode)
		assert.Equal(t, int32(4), hits.Load(), "status %d: first attempt plus three retries", code)
		assert.Len(t, *delays, 3)
	}
}

func TestClient_NeverRetriesPost(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, delays := newTestClient(srv)
	err := c.do(context.Background(), http.MethodPost, "/agent/1/start", nil, nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int32(1), hits.Load(), "POST gets exactly one attempt")
	assert.Empty(t, *delays)
}

func TestClient_AuthFailureShortCircuits(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(code)
		}))

		c, delays := newTestClient(srv)
		err := c.do(context.Background(), http.MethodGet, "/agent/all", nil, nil, nil)
		srv.Close()

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, code, apiErr.StatusCode)
		assert.Equal(t, int32(1), hits.Load(), "status %d must not be retried", code)
		assert.Empty(t, *delays)
	}
}

func TestClient_HonorsRetryAfterDelay(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"items":[],"totalCount":0}`))
	}))
	defer srv.Close()

	c, delays := newTestClient(srv)
	var page AgentPage
	err := c.do(context.Background(), http.MethodGet, "/agent/all", nil, nil, &page)

	require.NoError(t, err)
	require.Len(t, *delays, 1)
	assert.Equal(t, 2*time.Second, (*delays)[0])
}

func TestClient_NetworkErrorRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			// Hijack and drop the connection to simulate a transient fault.
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`{"id":"a1"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv)
	var agent Agent
	err := c.do(context.Background(), http.MethodGet, "/agent/a1", nil, nil, &agent)

	require.NoError(t, err)
	assert.Equal(t, "a1", agent.ID)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_AttemptTimeoutBecomesTimeoutError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	}))
	defer srv.Close()

	policy := DefaultRetryPolicy()
	policy.MaxRetries = 1
	policy.RequestTimeout = 50 * time.Millisecond
	c, _ := newTestClient(srv, WithRetryPolicy(policy))

	err := c.do(context.Background(), http.MethodGet, "/agent/all", nil, nil, nil)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 50*time.Millisecond, te.Budget)
	assert.Equal(t, int32(2), hits.Load(), "a timed-out attempt is retryable")
}

func TestClient_ParentCancellationStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := newTestClient(srv)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.do(ctx, http.MethodGet, "/agent/all", nil, nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_NoCredentials(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.do(context.Background(), http.MethodGet, "/agent/all", nil, nil, nil)

	assert.True(t, errors.Is(err, ErrNoCredentials))
	assert.Equal(t, int32(0), hits.Load(), "no request leaves the process without a credential")
}

func TestClient_AuthHeaderPreference(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithAPIKey("key-123"))
	require.NoError(t, c.do(context.Background(), http.MethodGet, "/space/all", nil, nil, nil))
	assert.Equal(t, "ApiKey key-123", got.Load())

	c.SetBearerToken("tok-456")
	require.NoError(t, c.do(context.Background(), http.MethodGet, "/space/all", nil, nil, nil))
	assert.Equal(t, "Bearer tok-456", got.Load(), "bearer token wins over the static key")
}
