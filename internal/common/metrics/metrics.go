// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "Total number of source fetches by terminal status",
		},
		[]string{"source", "status"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "source_fetch_duration_seconds",
			Help: "Duration of individual source fetches in seconds",
		},
		[]string{"source"},
	)

	FanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "fanout_duration_seconds",
			Help: "Wall-clock duration of a full fan-out join in seconds",
		},
	)

	SynthesisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthesis_requests_total",
			Help: "Total number of synthesis requests by outcome",
		},
		[]string{"status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_cache_lookups_total",
			Help: "Source response cache lookups by result",
		},
		[]string{"source", "result"},
	)
)
