// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EstimatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rent_estimates_total",
			Help: "Total number of rent estimates produced, by method",
		},
		[]string{"method"},
	)

	EstimateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rent_estimate_duration_seconds",
			Help: "Duration of a full triangulation call in seconds",
		},
		[]string{"method"},
	)

	SourceAvailable = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rent_source_available_total",
			Help: "Per-source availability outcomes during estimation",
		},
		[]string{"source", "available"},
	)

	SourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rent_source_errors_total",
			Help: "Store or network failures degraded to source-absent",
		},
		[]string{"source", "error_code"},
	)

	CompsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rent_comps_filtered_total",
			Help: "Comparables discarded during matching",
		},
		[]string{"reason"},
	)

	BackfillProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rent_backfill_rows_total",
			Help: "Listings updated by the backfill daemon",
		},
	)
)
