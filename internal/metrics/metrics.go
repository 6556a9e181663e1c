package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentacar",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "reservation_created_total",
			Help:      "Count of reservations submitted by payment type.",
		},
		[]string{"payment_type"},
	)

	reservationStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "reservation_status_total",
			Help:      "Count of reservation status changes by target status.",
		},
		[]string{"status"},
	)

	selectorClicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "selector_clicks_total",
			Help:      "Count of calendar clicks by outcome.",
		},
		[]string{"result"},
	)

	fleetCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "fleet_cache_total",
			Help:      "Fleet cache lookups by result.",
		},
		[]string{"result"},
	)

	fleetFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "fleet_fetch_errors_total",
			Help:      "Count of failed fleet fetches served as empty listings.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "notifications_total",
			Help:      "Count of outbound notifications by channel and result.",
		},
		[]string{"channel", "result"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "job_runs_total",
			Help:      "Count of scheduled job runs by job and result.",
		},
		[]string{"job", "result"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rentacar",
			Name:      "selection_sessions",
			Help:      "Number of live selection sessions.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			reservationCreated, reservationStatus,
			selectorClicks, fleetCache, fleetFetchErrors,
			notifications, jobRuns, activeSessions,
		)
	})
}

func ObserveHTTP(route string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncReservationCreated(paymentType string) {
	reservationCreated.WithLabelValues(paymentType).Inc()
}

func IncReservationStatus(status string) {
	reservationStatus.WithLabelValues(status).Inc()
}

func IncSelectorClick(result string) {
	selectorClicks.WithLabelValues(result).Inc()
}

func IncFleetCache(result string) {
	fleetCache.WithLabelValues(result).Inc()
}

func IncFleetFetchError() {
	fleetFetchErrors.Inc()
}

func IncNotification(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notifications.WithLabelValues(channel, result).Inc()
}

func IncJobRun(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	jobRuns.WithLabelValues(job, result).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
