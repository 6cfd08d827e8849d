package credentials

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics for the credential layer. A nil
// *Metrics is valid and records nothing, so wiring metrics stays optional.
type Metrics struct {
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	CacheEvictionsTotal prometheus.Counter

	IssuanceTotal    *prometheus.CounterVec
	IssuanceDuration prometheus.Histogram
	RetriesTotal     prometheus.Counter
}

// NewMetrics creates and registers the credential metrics.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_token_cache_hits_total",
			Help: "Total number of token cache hits",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_token_cache_misses_total",
			Help: "Total number of token cache misses, including expiring entries",
		}),
		CacheEvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_token_cache_evictions_total",
			Help: "Total number of token cache entries evicted at capacity",
		}),
		IssuanceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_credential_issuance_total",
			Help: "Total number of credential issuance calls",
		}, []string{"outcome"}),
		IssuanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "console_credential_issuance_duration_seconds",
			Help:    "Credential issuance duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_scoped_call_retries_total",
			Help: "Total number of stale-credential retry cycles",
		}),
	}

	registry.MustRegister(
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheEvictionsTotal,
		m.IssuanceTotal,
		m.IssuanceDuration,
		m.RetriesTotal,
	)
	return m
}

func (m *Metrics) recordCacheHit() {
	if m != nil {
		m.CacheHitsTotal.Inc()
	}
}

func (m *Metrics) recordCacheMiss() {
	if m != nil {
		m.CacheMissesTotal.Inc()
	}
}

func (m *Metrics) recordCacheEviction() {
	if m != nil {
		m.CacheEvictionsTotal.Inc()
	}
}

func (m *Metrics) recordIssuance(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.IssuanceTotal.WithLabelValues(outcome).Inc()
	m.IssuanceDuration.Observe(d.Seconds())
}

func (m *Metrics) recordRetry() {
	if m != nil {
		m.RetriesTotal.Inc()
	}
}
