package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scrapeworks/scrapeworks-mcp/internal/config"
	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
	"github.com/scrapeworks/scrapeworks-mcp/pkg/mcpserver"
)

// sessionHeader is the identifier header of the MCP streamable HTTP
// transport.
const sessionHeader = "Mcp-Session-Id"

// Gateway is the per-request entry point of the network transport. It
// resolves or creates sessions and forwards calls to the session's own
// transport.
type Gateway struct {
	cfg      *config.Config
	store    *Store
	logger   *slog.Logger
	metrics  *Metrics
	registry *prometheus.Registry

	// newTransport builds the per-session protocol server and transport.
	// Swapped in tests to observe close behavior.
	newTransport func(s *Session) protocolTransport
}

// New creates a gateway over its own session store.
func New(cfg *config.Config, logger *slog.Logger) *Gateway {
	registry := prometheus.NewRegistry()
	g := &Gateway{
		cfg:      cfg,
		store:    NewStore(cfg.MaxSessions),
		logger:   logger,
		metrics:  NewMetrics(registry),
		registry: registry,
	}
	g.newTransport = g.streamableTransport
	return g
}

// Store exposes the session store to the reaper and shutdown paths.
func (g *Gateway) Store() *Store { return g.store }

// Router builds the HTTP surface: the MCP endpoint, discovery documents,
// health, and metrics.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Handle("/mcp", http.HandlerFunc(g.handleMCP))
	r.Get("/.well-known/oauth-protected-resource", g.handleProtectedResourceMetadata)
	r.Get("/.well-known/oauth-authorization-server", g.handleAuthorizationServerMetadata)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, g.logger)
	})
	r.Handle("/metrics", promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{}))
	return r
}

// handleMCP routes a request to its session, creating one for an initialize
// request that carries no session identifier.
func (g *Gateway) handleMCP(w http.ResponseWriter, r *http.Request) {
	if id := r.Header.Get(sessionHeader); id != "" {
		sess, ok := g.store.Get(id)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "unknown or expired session", g.logger)
			return
		}
		sess.RefreshCredential(bearerToken(r))
		sess.transport.ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusBadRequest, "missing "+sessionHeader+" header", g.logger)
		return
	}

	token := bearerToken(r)
	if g.cfg.RequireAuth() {
		if err := validateBearer(token); err != nil {
			g.challenge(w, r, err)
			return
		}
	}

	if err := g.store.Reserve(); err != nil {
		g.metrics.SessionsRejected.Inc()
		w.Header().Set("Retry-After", "30")
		writeJSONError(w, http.StatusServiceUnavailable, "session capacity reached, retry later", g.logger)
		return
	}

	sess := g.newSession(token)

	// The transport assigns the identifier while handling initialize; the
	// id manager registers the session in the store at that moment.
	sess.transport.ServeHTTP(w, r)

	if sess.id == "" {
		// Protocol-level failure: no identifier was ever assigned. Close the
		// freshly created server instance so it cannot leak unreachable.
		g.store.Release()
		closeCtx, cancel := context.WithTimeout(context.Background(), closeGrace)
		sess.Close(closeCtx)
		cancel()
		g.logger.Warn("session creation failed before identifier assignment")
		return
	}

	g.metrics.SessionsCreated.Inc()
	g.metrics.SessionsActive.Set(float64(g.store.Len()))
	g.logger.Info("session created", "session_id", sess.id)
}

// newSession constructs the owned triple: API client, MCP server instance,
// and streamable transport.
func (g *Gateway) newSession(token string) *Session {
	client := api.NewClient(g.cfg.BaseURL,
		api.WithAPIKey(g.cfg.APIKey),
		api.WithBearerToken(token),
		api.WithLogger(g.logger),
	)
	sess := &Session{
		client:    client,
		createdAt: time.Now(),
		logger:    g.logger,
	}
	sess.srv = mcpserver.New(client, mcpserver.WithLogger(g.logger))
	sess.transport = g.newTransport(sess)
	return sess
}

// streamableTransport wires a dedicated streamable HTTP server for the
// session, with an id manager that reports identifier assignment back to the
// store.
func (g *Gateway) streamableTransport(sess *Session) protocolTransport {
	return server.NewStreamableHTTPServer(sess.srv,
		server.WithSessionIdManager(&sessionIDManager{
			sess:  sess,
			store: g.store,
			onTerminate: func(id string) {
				g.terminateSession(id)
			},
			logger: g.logger,
		}),
	)
}

// terminateSession handles an explicit client termination: removal from the
// store first, then an asynchronous close. Closing synchronously would
// deadlock inside the transport's own request handling.
func (g *Gateway) terminateSession(id string) {
	sess, ok := g.store.Remove(id)
	if !ok {
		return
	}
	g.metrics.SessionsActive.Set(float64(g.store.Len()))
	g.logger.Info("session terminated by client",
		"session_id", id,
		"session_age", time.Since(sess.createdAt).Round(time.Second),
	)
	go func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeGrace)
		defer cancel()
		sess.Close(closeCtx)
	}()
}

func (g *Gateway) challenge(w http.ResponseWriter, r *http.Request, err error) {
	metadata := g.canonicalURL(r) + "/.well-known/oauth-protected-resource"
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer resource_metadata=%q", metadata))
	writeJSONError(w, http.StatusUnauthorized, "authentication required: "+err.Error(), g.logger)
}

// sessionIDManager implements server.SessionIdManager for exactly one
// session. Generate runs inside the transport's initialize handling; the
// session becomes visible in the store only once the transport has assigned
// it an identifier, and before the response reaches the client.
type sessionIDManager struct {
	sess        *Session
	store       *Store
	onTerminate func(id string)
	logger      *slog.Logger
}

func (m *sessionIDManager) Generate() string {
	id := uuid.NewString()
	m.sess.id = id
	if err := m.store.Register(m.sess); err != nil {
		// Capacity was reserved and the id is fresh, so this is unreachable
		// short of an id collision.
		m.logger.Error("session registration failed", "session_id", id, "err", err)
	}
	return id
}

func (m *sessionIDManager) Validate(sessionID string) (bool, error) {
	if m.sess.id == "" || sessionID != m.sess.id {
		return false, fmt.Errorf("unknown session id")
	}
	return false, nil
}

func (m *sessionIDManager) Terminate(sessionID string) (bool, error) {
	if sessionID != m.sess.id {
		return false, fmt.Errorf("unknown session id")
	}
	m.onTerminate(sessionID)
	return false, nil
}
