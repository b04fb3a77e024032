package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "characters_cache_lookups_total",
			Help: "Response cache lookups by backend and result (fresh, stale, miss)",
		},
		[]string{"backend", "result"},
	)

	storedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "characters_cache_stored_bytes_total",
			Help: "Bytes of character API responses written to the cache",
		},
		[]string{"backend"},
	)

	notModifiedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "characters_304_responses_total",
			Help: "Stale entries revalidated by a 304 Not Modified answer",
		},
	)

	// ConditionalRequestsSent counts requests the client sent with a validator.
	ConditionalRequestsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "characters_conditional_requests_total",
			Help: "Total number of conditional requests sent",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "characters_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"},
	)
)
