package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds custom Prometheus metrics.
type MetricsManager struct {
	Registry *prometheus.Registry

	BookingsCreatedTotal  prometheus.Counter
	OverlapConflictsTotal prometheus.Counter
	BookingEmailsTotal    *prometheus.CounterVec
	PaymentsTotal         *prometheus.CounterVec
	HTTPErrorsTotal       *prometheus.CounterVec
	HTTPRequestLatency    *prometheus.HistogramVec
}

// NewMetricsManager initializes and registers custom Prometheus metrics.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	bookingsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	})
	overlapConflictsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "booking_overlap_conflicts_total",
		Help:      "Total number of booking attempts rejected due to overlapping dates.",
	})
	bookingEmailsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "booking_emails_total",
		Help:      "Total number of booking notification emails by outcome.",
	}, []string{"outcome"})
	paymentsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "payments_total",
		Help:      "Total number of payment transactions by final status.",
	}, []string{"status"})
	httpErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP error responses by route and status code.",
	}, []string{"route", "code"})
	httpRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	registry.MustRegister(
		bookingsCreatedTotal,
		overlapConflictsTotal,
		bookingEmailsTotal,
		paymentsTotal,
		httpErrorsTotal,
		httpRequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:              registry,
		BookingsCreatedTotal:  bookingsCreatedTotal,
		OverlapConflictsTotal: overlapConflictsTotal,
		BookingEmailsTotal:    bookingEmailsTotal,
		PaymentsTotal:         paymentsTotal,
		HTTPErrorsTotal:       httpErrorsTotal,
		HTTPRequestLatency:    httpRequestLatency,
	}
}

// Handler exposes the custom registry for mounting on the main HTTP router.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
