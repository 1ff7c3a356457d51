/*
Package metrics provides Prometheus instrumentation for the EcoAction
client core.

All collectors are package-level and registered in init(), so any package
can record observations without wiring. Handler() exposes the standard
/metrics endpoint for scraping.

# Metric Groups

Cache:
  - ecoaction_cache_reads_total{key, outcome}
  - ecoaction_cache_refetches_total{key}
  - ecoaction_cache_evictions_total
  - ecoaction_cache_fetches_in_flight
  - ecoaction_cache_fetch_duration_seconds{key}

Mutations:
  - ecoaction_enrollments_total
  - ecoaction_cancellations_total
  - ecoaction_mutation_failures_total{operation}
  - ecoaction_mutation_conflicts_total

Gateway:
  - ecoaction_gateway_request_duration_seconds{method}
  - ecoaction_gateway_request_failures_total{method}

# Usage

Timing an operation:

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.FetchDuration, key)

Counting events:

	metrics.CacheEvictionsTotal.Inc()
	metrics.MutationFailuresTotal.WithLabelValues("enroll").Inc()
*/
package metrics
