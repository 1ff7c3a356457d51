package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache metrics
	CacheReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoaction_cache_reads_total",
			Help: "Total number of cache reads by key and outcome (fresh, stale, empty)",
		},
		[]string{"key", "outcome"},
	)

	CacheRefetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoaction_cache_refetches_total",
			Help: "Total number of background refetches by key",
		},
		[]string{"key"},
	)

	CacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoaction_cache_evictions_total",
			Help: "Total number of cache entries evicted after their retention window",
		},
	)

	CacheFetchesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecoaction_cache_fetches_in_flight",
			Help: "Number of fetches currently in flight",
		},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoaction_cache_fetch_duration_seconds",
			Help:    "Fetch duration in seconds by key, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"key"},
	)

	// Mutation metrics
	EnrollmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoaction_enrollments_total",
			Help: "Total number of successful enrollments",
		},
	)

	CancellationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoaction_cancellations_total",
			Help: "Total number of successful cancellations",
		},
	)

	MutationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoaction_mutation_failures_total",
			Help: "Total number of rolled-back mutations by operation",
		},
		[]string{"operation"},
	)

	MutationConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoaction_mutation_conflicts_total",
			Help: "Total number of mutations rejected because one was already in flight",
		},
	)

	// Gateway metrics
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoaction_gateway_request_duration_seconds",
			Help:    "Backend request duration in seconds by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	RequestFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoaction_gateway_request_failures_total",
			Help: "Total number of failed backend requests by method",
		},
		[]string{"method"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(CacheReadsTotal)
	prometheus.MustRegister(CacheRefetchesTotal)
	prometheus.MustRegister(CacheEvictionsTotal)
	prometheus.MustRegister(CacheFetchesInFlight)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(EnrollmentsTotal)
	prometheus.MustRegister(CancellationsTotal)
	prometheus.MustRegister(MutationFailuresTotal)
	prometheus.MustRegister(MutationConflictsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RequestFailuresTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
