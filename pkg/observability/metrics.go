package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics groups the Prometheus collectors exported by the scoring service.
type Metrics struct {
	registry          *prometheus.Registry
	assessments       *prometheus.CounterVec
	inferenceDuration *prometheus.HistogramVec
	inferenceErrors   *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance backed by its own registry so that
// tests can build as many as they like without duplicate registration.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Scored messages by predicted category and risk level.",
		}, []string{"category", "risk_level"}),
		inferenceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Latency of classifier inference calls.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"model"}),
		inferenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_errors_total",
			Help:      "Failed classifier inference calls.",
		}, []string{"model"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by outcome (hit, miss, error).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.assessments, m.inferenceDuration, m.inferenceErrors, m.cacheLookups)
	return m
}

// NewMeterProvider returns an OpenTelemetry MeterProvider whose instruments
// are exported through the same registry as the Prometheus collectors.
func (m *Metrics) NewMeterProvider() (*sdkmetric.MeterProvider, error) {
	exporter, err := promexporter.New(promexporter.WithRegisterer(m.registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (used by tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAssessment counts one scored message.
func (m *Metrics) ObserveAssessment(category, riskLevel string) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(category, riskLevel).Inc()
}

// ObserveInference records the latency of one inference call and counts it as
// an error when err is non-nil.
func (m *Metrics) ObserveInference(model string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.inferenceDuration.WithLabelValues(model).Observe(time.Since(started).Seconds())
	if err != nil {
		m.inferenceErrors.WithLabelValues(model).Inc()
	}
}

// ObserveCacheLookup counts a cache lookup outcome.
func (m *Metrics) ObserveCacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}
