// Package metrics records contraction and tool-call measurements with
// Prometheus. A Metrics value satisfies gowick.Observer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances, one per test for
// example, never collide.
type Metrics struct {
	registry *prometheus.Registry

	contractions prometheus.Counter
	terms        prometheus.Counter
	duration     prometheus.Histogram
	cacheHits    prometheus.Counter
	toolCalls    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		contractions: f.NewCounter(prometheus.CounterOpts{
			Name: "wick_contractions_total",
			Help: "Composite contractions evaluated",
		}),
		terms: f.NewCounter(prometheus.CounterOpts{
			Name: "wick_terms_total",
			Help: "Terms in contraction results",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wick_contract_duration_seconds",
			Help:    "Contract call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms to ~2min
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "wick_canonical_cache_hits_total",
			Help: "Canonical-term cache hits",
		}),
		toolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wick_tool_calls_total",
			Help: "Tool calls by tool and result",
		}, []string{"tool", "result"}),
	}
}

func (m *Metrics) ContractionDone(products, contractions, terms int, elapsed time.Duration) {
	m.contractions.Add(float64(contractions))
	m.terms.Add(float64(terms))
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) CacheHit() { m.cacheHits.Inc() }

// ToolCall counts one call; result is "ok" or "error".
func (m *Metrics) ToolCall(tool string, failed bool) {
	result := "ok"
	if failed {
		result = "error"
	}
	m.toolCalls.WithLabelValues(tool, result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
