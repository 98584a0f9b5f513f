// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_submissions_total",
			Help: "Total number of portfolio submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_submissions_failed_total",
			Help: "Total number of failed portfolio submissions by error code",
		},
		[]string{"error_code"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_submission_duration_seconds",
			Help:    "Time from submit to resolution of the backend call",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 240, 300, 450, 600},
		},
		[]string{"outcome"},
	)

	SubmissionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_submissions_in_flight",
			Help: "Number of submissions waiting on the backend",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_notifications_total",
			Help: "Completion notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_active_sessions",
			Help: "Browser sessions holding a submission controller",
		},
	)
)
