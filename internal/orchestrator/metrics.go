package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts finished comparisons by outcome.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compare_requests_total",
		Help: "Total number of comparison requests by outcome",
	}, []string{"outcome"})

	// requestDuration tracks end-to-end comparison latency.
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compare_request_duration_seconds",
		Help:    "End-to-end comparison duration",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
	})

	// platformDuration tracks per-storefront search latency.
	platformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compare_platform_duration_seconds",
		Help:    "Per-storefront search duration",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45},
	}, []string{"platform"})

	// platformListings tracks how many listings each storefront contributed.
	platformListings = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compare_platform_listings_count",
		Help:    "Listings returned per storefront search",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	}, []string{"platform"})

	// platformErrors counts storefront searches that ended in an error.
	platformErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compare_platform_errors_total",
		Help: "Total number of failed storefront searches",
	}, []string{"platform"})

	// groupCount tracks how many ranked groups comparisons produce.
	groupCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compare_groups_count",
		Help:    "Ranked groups per comparison",
		Buckets: []float64{0, 1, 5, 10, 20, 35},
	})
)

// MetricsRecorder provides methods to record comparison metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordRequest records a finished comparison.
func (m *MetricsRecorder) RecordRequest(outcome string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(outcome).Inc()
	requestDuration.Observe(elapsed.Seconds())
}

// RecordPlatformSearch records one storefront's search outcome.
func (m *MetricsRecorder) RecordPlatformSearch(platform string, elapsed time.Duration, listings int, success bool) {
	platformDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
	platformListings.WithLabelValues(platform).Observe(float64(listings))
	if !success {
		platformErrors.WithLabelValues(platform).Inc()
	}
}

// RecordGroupCount records how many groups a comparison produced.
func (m *MetricsRecorder) RecordGroupCount(count int) {
	groupCount.Observe(float64(count))
}
