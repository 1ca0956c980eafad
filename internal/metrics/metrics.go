package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_reservations_total",
			Help: "Total number of reservations created",
		},
		[]string{"kind", "status"},
	)

	ReservationCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_reservation_cancellations_total",
			Help: "Total number of reservation cancellations",
		},
		[]string{"kind"},
	)

	CapacityRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_capacity_rejections_total",
			Help: "Requests rejected because no lane, room or buoy was left",
		},
		[]string{"kind"},
	)

	BuoyRecomputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_buoy_recompute_total",
			Help: "Total number of buoy group recomputations",
		},
		[]string{"result"},
	)

	BuoyGroupsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_buoy_groups_skipped_total",
			Help: "Diver groups left without a buoy",
		},
	)

	RecomputeQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_recompute_queue_length",
			Help: "Current length of the buoy recompute queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(kind, status string) {
	ReservationsTotal.WithLabelValues(kind, status).Inc()
}

func RecordCancellation(kind string) {
	ReservationCancellationsTotal.WithLabelValues(kind).Inc()
}

func RecordCapacityRejection(kind string) {
	CapacityRejectionsTotal.WithLabelValues(kind).Inc()
}

func RecordRecompute(result string, skipped int) {
	BuoyRecomputeTotal.WithLabelValues(result).Inc()
	BuoyGroupsSkippedTotal.Add(float64(skipped))
}

func SetRecomputeQueueLength(n int64) {
	RecomputeQueueLength.Set(float64(n))
}
