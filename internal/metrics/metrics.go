// Package metrics provides Prometheus metrics for the validation server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the server metrics.
type Collector struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Documents counts validated documents by record and outcome.
	Documents *prometheus.CounterVec
	// Issues counts reported issues by code.
	Issues *prometheus.CounterVec
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schemabind",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "schemabind",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "schemabind",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		Documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schemabind",
				Name:      "documents_total",
				Help:      "Total number of documents validated",
			},
			[]string{"record", "outcome"},
		),
		Issues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schemabind",
				Name:      "issues_total",
				Help:      "Total number of issues reported",
			},
			[]string{"code"},
		),
	}
}

// ObserveDocument records one validated document. record is "unknown" when
// the type could not be resolved.
func (c *Collector) ObserveDocument(record string, issueCodes []string) {
	if record == "" {
		record = "unknown"
	}
	outcome := "valid"
	if len(issueCodes) > 0 {
		outcome = "invalid"
	}
	c.Documents.WithLabelValues(record, outcome).Inc()
	for _, code := range issueCodes {
		c.Issues.WithLabelValues(code).Inc()
	}
}

// StatusLabel returns a string label for the status code.
func StatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
