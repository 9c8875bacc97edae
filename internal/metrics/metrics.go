// Package metrics holds the Prometheus collectors recorded by the transport.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/elusion/briq-go/internal/constants"
)

// Metrics holds the request collectors.
type Metrics struct {
	RequestTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Collectors that
// are already registered (for example by a second client sharing reg) are
// reused.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"operation", "method", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "method"}),

		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "request_errors_total",
			Help:      "Total number of failed API requests by error kind",
		}, []string{"operation", "kind"}),
	}

	m.RequestTotal = registerOrGet(reg, m.RequestTotal)
	m.RequestDuration = registerOrGet(reg, m.RequestDuration)
	m.RequestErrors = registerOrGet(reg, m.RequestErrors)

	return m
}

// Observe records one finished request. statusCode is 0 when no response was
// received. A nil receiver is a no-op.
func (m *Metrics) Observe(operation, method string, statusCode int, elapsed time.Duration, errKind string) {
	if m == nil {
		return
	}

	status := "none"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}

	m.RequestTotal.WithLabelValues(operation, method, status).Inc()
	m.RequestDuration.WithLabelValues(operation, method).Observe(elapsed.Seconds())

	if errKind != "" {
		m.RequestErrors.WithLabelValues(operation, errKind).Inc()
	}
}

// registerOrGet registers c, returning the existing collector if an equal
// one is already registered.
func registerOrGet[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}

	return c
}
