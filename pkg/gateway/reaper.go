package gateway

import (
	"context"
	"log/slog"
	"time"
)

// closeGrace bounds how long a single eviction waits on a session's close.
const closeGrace = 5 * time.Second

// Reaper evicts sessions idle beyond the threshold on a fixed interval. The
// interval is shorter than the threshold, so no session survives much past
// threshold + interval after its last activity.
type Reaper struct {
	store     *Store
	interval  time.Duration
	threshold time.Duration
	logger    *slog.Logger
	metrics   *Metrics
}

// NewReaper creates a reaper over the store.
func NewReaper(store *Store, interval, threshold time.Duration, logger *slog.Logger, metrics *Metrics) *Reaper {
	return &Reaper{
		store:     store,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run sweeps until ctx is cancelled. Blocks; callers start it on its own
// goroutine.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepOnce(ctx)
		}
	}
}

// sweepOnce removes and closes every expired session.
func (r *Reaper) sweepOnce(ctx context.Context) {
	evicted := r.store.Sweep(r.threshold)
	for _, s := range evicted {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeGrace)
		s.Close(closeCtx)
		cancel()
		r.logger.Info("evicted idle session",
			"session_id", s.ID(),
			"session_age", time.Since(s.createdAt).Round(time.Second),
			"idle_threshold", r.threshold,
		)
	}
	if len(evicted) > 0 && r.metrics != nil {
		r.metrics.SessionsEvicted.Add(float64(len(evicted)))
		r.metrics.SessionsActive.Set(float64(r.store.Len()))
	}
}
