package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/scrapeworks/scrapeworks-mcp/internal/config"
)

// shutdownCeiling is the hard bound on graceful shutdown. The process exits
// once it elapses even if a session close never resolves.
const shutdownCeiling = 10 * time.Second

// Server runs the gateway, its reaper, and the shutdown coordinator.
type Server struct {
	gw     *Gateway
	cfg    *config.Config
	logger *slog.Logger
	httpd  *http.Server
}

// NewServer assembles the network transport server.
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	gw := New(cfg, logger)
	return &Server{
		gw:     gw,
		cfg:    cfg,
		logger: logger,
		httpd: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler: gw.Router(),
		},
	}
}

// Run serves until ctx is cancelled, then drains: the listener stops
// accepting, the reaper's timer is cancelled, and every active session is
// closed concurrently under the shutdown ceiling.
func (s *Server) Run(ctx context.Context) error {
	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	reaper := NewReaper(s.gw.Store(),
		s.cfg.ReaperInterval.Std(),
		s.cfg.SessionIdleTimeout.Std(),
		s.logger, s.gw.metrics)
	go reaper.Run(reaperCtx)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (streamable HTTP)", "address", s.httpd.Addr)
		serverErrors <- s.httpd.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received, draining sessions")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownCeiling)
	defer cancel()

	stopReaper()
	if err := s.httpd.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warn("listener shutdown failed", "err", err)
	}

	drained := s.gw.Store().Drain()
	closeAll(shutdownCtx, drained, s.logger)
	s.logger.Info("shutdown complete", "sessions_closed", len(drained))
	return nil
}

// closeAll closes every session concurrently and waits for the slower of
// completion and ctx expiry. A hanging close cannot hold the process past
// the ceiling.
func closeAll(ctx context.Context, sessions []*Session, logger *slog.Logger) {
	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close(ctx)
		}(sess)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("shutdown ceiling reached with session closes still pending")
	}
}
