// Package metrics provides Prometheus metrics for the mapping engine.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/ports"
)

// Collector holds the engine's Prometheus metrics and implements
// ports.Observer.
type Collector struct {
	// Extraction metrics
	ExtractionsTotal *prometheus.CounterVec
	FieldsTotal      *prometheus.CounterVec
	DiagnosticsTotal *prometheus.CounterVec

	// Upstream call metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector on a custom registry. Useful for
// testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ExtractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fieldmap",
				Name:      "extractions_total",
				Help:      "Total number of container extractions",
			},
			[]string{"container", "outcome"},
		),
		FieldsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fieldmap",
				Name:      "fields_total",
				Help:      "Total number of fields produced by extractions",
			},
			[]string{"container"},
		),
		DiagnosticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fieldmap",
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics by kind",
			},
			[]string{"kind"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fieldmap",
				Name:      "requests_total",
				Help:      "Total number of upstream requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fieldmap",
				Name:      "request_duration_seconds",
				Help:      "Upstream request duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
	}
}

// ObserveExtraction records one extraction and its diagnostics.
func (c *Collector) ObserveExtraction(container string, fields int, diags diag.List) {
	outcome := "clean"
	if len(diags) > 0 {
		outcome = "diagnostics"
	}
	c.ExtractionsTotal.WithLabelValues(container, outcome).Inc()
	c.FieldsTotal.WithLabelValues(container).Add(float64(fields))
	for _, d := range diags {
		c.DiagnosticsTotal.WithLabelValues(d.Kind.String()).Inc()
	}
}

// ObserveRequest records one upstream call.
func (c *Collector) ObserveRequest(method string, status int, seconds float64) {
	c.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method).Observe(seconds)
}

// Ensure interface compliance.
var _ ports.Observer = (*Collector)(nil)
