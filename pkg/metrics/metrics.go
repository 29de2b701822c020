// Package metrics defines the Prometheus collectors for conversions
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traktor2rekordbox_conversions_total",
			Help: "Total number of library conversions",
		},
		[]string{"direction", "status"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "traktor2rekordbox_conversion_duration_seconds",
			Help:    "Library conversion duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	TracksConverted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traktor2rekordbox_tracks_converted_total",
			Help: "Total number of tracks written by conversions",
		},
		[]string{"direction"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traktor2rekordbox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "traktor2rekordbox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// ObserveConversion records the outcome of one conversion
func ObserveConversion(direction string, tracks int, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ConversionsTotal.WithLabelValues(direction, status).Inc()
	ConversionDuration.WithLabelValues(direction).Observe(elapsed.Seconds())
	if err == nil {
		TracksConverted.WithLabelValues(direction).Add(float64(tracks))
	}
}
