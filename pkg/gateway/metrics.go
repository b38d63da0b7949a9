package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes session lifecycle counters on the /metrics endpoint.
type Metrics struct {
	SessionsActive   prometheus.Gauge
	SessionsCreated  prometheus.Counter
	SessionsEvicted  prometheus.Counter
	SessionsRejected prometheus.Counter
}

// NewMetrics registers the gateway metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scrapeworks_mcp_sessions_active",
			Help: "Number of registered MCP sessions.",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "scrapeworks_mcp_sessions_created_total",
			Help: "Sessions successfully created and registered.",
		}),
		SessionsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "scrapeworks_mcp_sessions_evicted_total",
			Help: "Sessions evicted by the idle reaper.",
		}),
		SessionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "scrapeworks_mcp_sessions_rejected_total",
			Help: "Session creations rejected at the capacity ceiling.",
		}),
	}
}
