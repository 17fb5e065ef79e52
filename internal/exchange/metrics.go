package exchange

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// clientMetrics mirrors the teacher's package-level promauto vars
// (internal/infrastructure/metrics), but instantiated per Client against its
// configured Registerer rather than the global default, since more than one
// Client may exist in a process (spec §4.10).
type clientMetrics struct {
	queriesTotal   *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	udpRetries     prometheus.Counter
	tcpFallbacks   prometheus.Counter
	inflight       prometheus.Gauge
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	f := promauto.With(reg)
	return &clientMetrics{
		queriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rdns_queries_total",
			Help: "Total number of DNS queries attempted by protocol and outcome.",
		}, []string{"qtype", "protocol", "outcome"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rdns_query_duration_seconds",
			Help:    "Histogram of end-to-end query duration by protocol.",
			Buckets: prometheus.DefBuckets,
		}, []string{"protocol"}),
		udpRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "rdns_udp_retries_total",
			Help: "Total number of UDP retry attempts after a query timeout.",
		}),
		tcpFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "rdns_tcp_fallbacks_total",
			Help: "Total number of times a truncated UDP response triggered a TCP retry.",
		}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "rdns_inflight_queries",
			Help: "Number of queries currently in flight on this client (0 or 1, spec single-in-flight rule).",
		}),
	}
}
