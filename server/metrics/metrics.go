package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates Prometheus metrics for the server.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  *prometheus.GaugeVec
	ErrorsTotal     *prometheus.CounterVec

	// Model Gateway
	GatewayResults  *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	PromptTokens    *prometheus.HistogramVec

	// Document Extractor
	ExtractionFailures prometheus.Counter
	ExtractedChars     prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with a custom registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiengine_http_requests_total",
				Help: "Total number of HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiengine_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aiengine_http_active_requests",
				Help: "Number of currently active HTTP requests",
			},
			[]string{"endpoint"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiengine_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"type"},
		),
		GatewayResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiengine_gateway_results_total",
				Help: "Model gateway outcomes by kind (mock, completion, upstream_failure)",
			},
			[]string{"kind"},
		),
		GatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiengine_gateway_call_duration_seconds",
				Help:    "Duration of model gateway calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
			},
			[]string{"kind"},
		),
		PromptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiengine_prompt_tokens",
				Help:    "Token count of rendered prompts",
				Buckets: prometheus.ExponentialBuckets(16, 2, 8),
			},
			[]string{"model"},
		),
		ExtractionFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "aiengine_extraction_failures_total",
				Help: "Uploaded documents that could not be parsed",
			},
		),
		ExtractedChars: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aiengine_extracted_characters",
				Help:    "Characters of text extracted per uploaded document, before truncation",
				Buckets: prometheus.ExponentialBuckets(256, 2, 10),
			},
		),
	}

	// Register default Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry exposes the underlying registry so other components (the circuit
// breaker) can register their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns a handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: false,
	})
}
