package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myvelib_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "myvelib_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RentalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myvelib_rentals_total",
			Help: "Total number of successful bike rentals",
		},
		[]string{"bike_type"},
	)

	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myvelib_returns_total",
			Help: "Total number of successful bike returns",
		},
		[]string{"station_kind"},
	)

	TransactionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myvelib_transaction_failures_total",
			Help: "Rent/return transactions rejected by the network",
		},
		[]string{"operation", "reason"},
	)

	RidePlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myvelib_ride_plans_total",
			Help: "Total number of ride plans computed",
		},
		[]string{"policy"},
	)

	StationNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "myvelib_station_notifications_total",
			Help: "Station availability notifications pushed to subscribed users",
		},
	)

	TimeCreditMinutesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "myvelib_time_credit_minutes_total",
			Help: "Total bonus time credit minutes granted on returns",
		},
	)

	DockedBikes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "myvelib_docked_bikes",
			Help: "Current number of docked bikes per station",
		},
		[]string{"station_id"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRental(bikeType string) {
	RentalsTotal.WithLabelValues(bikeType).Inc()
}

func RecordReturn(stationKind string) {
	ReturnsTotal.WithLabelValues(stationKind).Inc()
}

func RecordTransactionFailure(operation, reason string) {
	TransactionFailuresTotal.WithLabelValues(operation, reason).Inc()
}

func RecordRidePlan(policy string) {
	RidePlansTotal.WithLabelValues(policy).Inc()
}

func RecordStationNotification() {
	StationNotificationsTotal.Inc()
}

func RecordTimeCredit(minutes int) {
	TimeCreditMinutesTotal.Add(float64(minutes))
}
