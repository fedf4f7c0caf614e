package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of the user service
type Metrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// User metrics
	UserOperationsCounter *prometheus.CounterVec
	OrdersAppendedCounter prometheus.Counter
}

// NewMetrics creates and registers the service collectors on reg using the
// configured metric prefix
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		UserOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_user_operations_total",
				Help: "Total number of user operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OrdersAppendedCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_orders_appended_total",
				Help: "Total number of orders appended to users",
			},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		m.DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordUserOperation increments the counter for user operations
func (m *Metrics) RecordUserOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.UserOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordOrderAppended increments the appended orders counter
func (m *Metrics) RecordOrderAppended() {
	if m == nil {
		return
	}
	m.OrdersAppendedCounter.Inc()
}

// Handler returns an HTTP handler exposing the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
