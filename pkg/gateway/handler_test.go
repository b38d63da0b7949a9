package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapeworks/scrapeworks-mcp/internal/config"
	"github.com/scrapeworks/scrapeworks-mcp/internal/logging"
)

const initializeBody = `{
	"jsonrpc": "2.0",
	"id": 1,
	"method": "initialize",
	"params": {
		"protocolVersion": "2025-03-26",
		"capabilities": {},
		"clientInfo": {"name": "gateway-test", "version": "0.0.1"}
	}
}`

func newTestGateway(t *testing.T, mutate func(cfg *config.Config)) (*Gateway, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Transport = config.TransportHTTP
	cfg.APIKey = "test-key"
	cfg.DisableAuth = true
	if mutate != nil {
		mutate(&cfg)
	}
	g := New(&cfg, logging.NewNop())
	srv := httptest.NewServer(g.Router())
	t.Cleanup(srv.Close)
	return g, srv
}

func mcpRequest(t *testing.T, method, url, sessionID, bearer, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func initialize(t *testing.T, url, bearer string) *http.Response {
	t.Helper()
	return mcpRequest(t, http.MethodPost, url+"/mcp", "", bearer, initializeBody)
}

func TestGateway_InitializeCreatesSession(t *testing.T) {
	g, srv := newTestGateway(t, nil)

	resp := initialize(t, srv.URL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	id := resp.Header.Get(sessionHeader)
	require.NotEmpty(t, id, "the transport assigns an identifier during initialize")
	assert.Equal(t, 1, g.Store().Len())

	sess, ok := g.Store().Get(id)
	require.True(t, ok)
	assert.Equal(t, id, sess.ID())
	assert.Equal(t, float64(1), testutil.ToFloat64(g.metrics.SessionsCreated))
}

func TestGateway_EachConnectionGetsOwnSession(t *testing.T) {
	g, srv := newTestGateway(t, nil)

	first := initialize(t, srv.URL, "")
	second := initialize(t, srv.URL, "")

	a := first.Header.Get(sessionHeader)
	b := second.Header.Get(sessionHeader)
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, g.Store().Len())
}

func TestGateway_FollowUpRequestRoutesToSession(t *testing.T) {
	_, srv := newTestGateway(t, nil)

	resp := initialize(t, srv.URL, "")
	id := resp.Header.Get(sessionHeader)
	require.NotEmpty(t, id)

	listBody := `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`
	listResp := mcpRequest(t, http.MethodPost, srv.URL+"/mcp", id, "", listBody)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
}

func TestGateway_UnknownSessionIs404(t *testing.T) {
	_, srv := newTestGateway(t, nil)

	resp := mcpRequest(t, http.MethodPost, srv.URL+"/mcp", "no-such-session", "",
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_NonPostWithoutSessionIs400(t *testing.T) {
	_, srv := newTestGateway(t, nil)

	resp := mcpRequest(t, http.MethodGet, srv.URL+"/mcp", "", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGateway_CapacityCeiling(t *testing.T) {
	g, srv := newTestGateway(t, func(cfg *config.Config) {
		cfg.MaxSessions = 1
	})

	first := initialize(t, srv.URL, "")
	require.Equal(t, http.StatusOK, first.StatusCode)

	second := initialize(t, srv.URL, "")
	assert.Equal(t, http.StatusServiceUnavailable, second.StatusCode)
	assert.Equal(t, "30", second.Header.Get("Retry-After"))
	assert.Equal(t, 1, g.Store().Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(g.metrics.SessionsRejected))
}

func TestGateway_ClientTermination(t *testing.T) {
	g, srv := newTestGateway(t, nil)

	resp := initialize(t, srv.URL, "")
	id := resp.Header.Get(sessionHeader)
	require.NotEmpty(t, id)
	require.Equal(t, 1, g.Store().Len())

	del := mcpRequest(t, http.MethodDelete, srv.URL+"/mcp", id, "", "")
	assert.Equal(t, http.StatusOK, del.StatusCode)
	assert.Equal(t, 0, g.Store().Len(), "removal precedes the asynchronous close")

	after := mcpRequest(t, http.MethodPost, srv.URL+"/mcp", id, "",
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	assert.Equal(t, http.StatusNotFound, after.StatusCode)
}

func TestGateway_AuthRequired(t *testing.T) {
	g, srv := newTestGateway(t, func(cfg *config.Config) {
		cfg.DisableAuth = false
	})

	t.Run("missing token is challenged", func(t *testing.T) {
		resp := initialize(t, srv.URL, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		challenge := resp.Header.Get("WWW-Authenticate")
		assert.Contains(t, challenge, "Bearer")
		assert.Contains(t, challenge, "/.well-known/oauth-protected-resource")
		assert.Equal(t, 0, g.Store().Len())
	})

	t.Run("expired token is challenged", func(t *testing.T) {
		expired := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
		resp := initialize(t, srv.URL, expired)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token is admitted", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
		resp := initialize(t, srv.URL, token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(sessionHeader))
	})
}

func TestGateway_ProtectedResourceMetadata(t *testing.T) {
	_, srv := newTestGateway(t, func(cfg *config.Config) {
		cfg.OAuthIssuer = "https://auth.example.com"
	})

	resp, err := http.Get(srv.URL + "/.well-known/oauth-protected-resource")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc protectedResourceMetadata
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, srv.URL+"/mcp", doc.Resource)
	assert.Equal(t, []string{"https://auth.example.com"}, doc.AuthorizationServers)
	assert.Equal(t, []string{"header"}, doc.BearerMethodsSupported)
}

func TestGateway_AuthorizationServerMetadata(t *testing.T) {
	_, srv := newTestGateway(t, func(cfg *config.Config) {
		cfg.OAuthIssuer = "https://auth.example.com"
	})

	resp, err := http.Get(srv.URL + "/.well-known/oauth-authorization-server")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc authorizationServerMetadata
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "https://auth.example.com", doc.Issuer)
	assert.Equal(t, "https://auth.example.com/oauth/authorize", doc.AuthorizationEndpoint)
	assert.Equal(t, "https://auth.example.com/oauth/token", doc.TokenEndpoint)
	assert.Equal(t, []string{"S256"}, doc.CodeChallengeMethodsSupported)
}

func TestGateway_AuthorizationServerMetadataClientID(t *testing.T) {
	_, srv := newTestGateway(t, func(cfg *config.Config) {
		cfg.OAuthClientID = "scrapeworks-public"
	})

	resp, err := http.Get(srv.URL + "/.well-known/oauth-authorization-server")
	require.NoError(t, err)
	defer resp.Body.Close()

	var doc authorizationServerMetadata
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "scrapeworks-public", doc.ClientID)

	// Without a pinned client the field stays off the document entirely.
	_, bare := newTestGateway(t, nil)
	bareResp, err := http.Get(bare.URL + "/.well-known/oauth-authorization-server")
	require.NoError(t, err)
	defer bareResp.Body.Close()

	var raw map[string]any
	require.NoError(t, json.NewDecoder(bareResp.Body).Decode(&raw))
	assert.NotContains(t, raw, "client_id")
}

func TestGateway_RoutedRequestRefreshesCredential(t *testing.T) {
	var auth atomic.Value
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"items":[],"totalCount":0}`))
	}))
	t.Cleanup(upstream.Close)

	_, srv := newTestGateway(t, func(cfg *config.Config) {
		cfg.BaseURL = upstream.URL
	})

	resp := initialize(t, srv.URL, "stale-token")
	id := resp.Header.Get(sessionHeader)
	require.NotEmpty(t, id)

	callBody := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_agents","arguments":{}}}`
	callResp := mcpRequest(t, http.MethodPost, srv.URL+"/mcp", id, "fresh-token", callBody)
	require.Equal(t, http.StatusOK, callResp.StatusCode)

	assert.Equal(t, "Bearer fresh-token", auth.Load(),
		"a routed request's bearer token replaces the session credential before the upstream call")
}

func TestGateway_CanonicalURLHonorsProxyHeadersOnlyWhenTrusted(t *testing.T) {
	fetch := func(srv *httptest.Server) protectedResourceMetadata {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/.well-known/oauth-protected-resource", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-Proto", "https")
		req.Header.Set("X-Forwarded-Host", "mcp.example.com")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var doc protectedResourceMetadata
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		return doc
	}

	_, untrusted := newTestGateway(t, nil)
	assert.Equal(t, untrusted.URL+"/mcp", fetch(untrusted).Resource,
		"forwarded headers are ignored without trust_proxy")

	_, trusted := newTestGateway(t, func(cfg *config.Config) { cfg.TrustProxy = true })
	assert.Equal(t, "https://mcp.example.com/mcp", fetch(trusted).Resource)
}

func TestGateway_Healthz(t *testing.T) {
	_, srv := newTestGateway(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateway_MetricsEndpoint(t *testing.T) {
	_, srv := newTestGateway(t, nil)

	initialize(t, srv.URL, "")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scrapeworks_mcp_sessions_created_total 1")
}
