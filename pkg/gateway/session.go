package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
)

// protocolTransport is the per-session HTTP transport. Satisfied by
// *server.StreamableHTTPServer; abstracted so tests can inject transports
// whose shutdown fails or hangs.
type protocolTransport interface {
	http.Handler
	Shutdown(ctx context.Context) error
}

// Session binds one MCP server instance, its transport, and one authenticated
// API client to a connection identifier.
type Session struct {
	id        string
	srv       *server.MCPServer
	transport protocolTransport
	client    *api.Client
	createdAt time.Time
	logger    *slog.Logger

	mu         sync.Mutex
	lastActive time.Time

	closeOnce sync.Once
}

// ID returns the transport-assigned identifier. Empty until the transport
// has completed the initialize exchange.
func (s *Session) ID() string { return s.id }

// LastActive returns the last-activity timestamp.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

// RefreshCredential replaces the session client's bearer token in place, so a
// mid-connection token refresh takes effect without reconnecting.
func (s *Session) RefreshCredential(token string) {
	if token != "" {
		s.client.SetBearerToken(token)
	}
}

// Close shuts down the owned transport. Idempotent: eviction, explicit
// termination, and shutdown drain may race, but the underlying server is
// closed exactly once. Failures are logged and swallowed; teardown must never
// block removal from the store.
func (s *Session) Close(ctx context.Context) {
	s.closeOnce.Do(func() {
		if err := s.transport.Shutdown(ctx); err != nil {
			s.logger.Warn("session close failed", "session_id", s.id, "err", err)
		}
	})
}
