// Package metrics holds the prometheus collectors shared by the store and the
// remote transports. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a private registry plus the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	rpcCalls        *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
	mutations       *prometheus.CounterVec
	persistFailures prometheus.Counter
	rateLimited     prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vtodo",
			Name:      "rpc_calls_total",
			Help:      "Remote procedure calls by procedure and outcome.",
		}, []string{"procedure", "outcome"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vtodo",
			Name:      "rpc_call_duration_seconds",
			Help:      "Remote procedure call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"procedure"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vtodo",
			Name:      "store_mutations_total",
			Help:      "Successful store mutations by operation.",
		}, []string{"op"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vtodo",
			Name:      "persist_failures_total",
			Help:      "Snapshot writes that failed. The in-memory mutation is kept.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vtodo",
			Name:      "rpc_rate_limited_total",
			Help:      "HTTP procedure calls rejected by the rate limiter.",
		}),
	}
	m.registry.MustRegister(
		m.rpcCalls,
		m.rpcDuration,
		m.mutations,
		m.persistFailures,
		m.rateLimited,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRPC records one procedure call.
func (m *Metrics) ObserveRPC(procedure, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcCalls.WithLabelValues(procedure, outcome).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// IncMutation counts a successful store mutation.
func (m *Metrics) IncMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

// IncPersistFailure counts a failed snapshot write.
func (m *Metrics) IncPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
