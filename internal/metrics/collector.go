// Package metrics exposes Prometheus metrics for generation calls, pipeline runs,
// probes and HTTP requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mhpenta/planviz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements planviz.MetricsRecorder on a dedicated registry.
type Collector struct {
	registry *prometheus.Registry

	generationTotal    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec

	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec

	probesTotal   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Ensure Collector implements the interface.
var _ planviz.MetricsRecorder = (*Collector)(nil)

// NewCollector registers every metric under namespace on a fresh registry,
// together with the Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	// Remote calls routinely take tens of seconds for image output.
	callBuckets := []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120}

	return &Collector{
		registry: reg,

		generationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Total number of generation requests",
			},
			[]string{"model", "status"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "request_duration_seconds",
				Help:      "Generation request duration in seconds",
				Buckets:   callBuckets,
			},
			[]string{"model"},
		),

		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total number of render runs by outcome",
			},
			[]string{"status"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Render run duration in seconds",
				Buckets:   []float64{5, 10, 20, 30, 60, 90, 120, 180, 300},
			},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   callBuckets,
			},
			[]string{"stage", "status"},
		),

		probesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "probe",
				Name:      "results_total",
				Help:      "Total number of capability probes by model and outcome",
			},
			[]string{"model", "supported"},
		),
		probeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "probe",
				Name:      "duration_seconds",
				Help:      "Capability probe duration in seconds",
				Buckets:   callBuckets,
			},
			[]string{"model"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveGeneration(model, status string, duration time.Duration) {
	c.generationTotal.WithLabelValues(model, status).Inc()
	c.generationDuration.WithLabelValues(model).Observe(duration.Seconds())
}

func (c *Collector) ObserveStage(stage planviz.Stage, status string, duration time.Duration) {
	c.stageDuration.WithLabelValues(stage.String(), status).Observe(duration.Seconds())
}

func (c *Collector) ObserveRun(status string, duration time.Duration) {
	c.runsTotal.WithLabelValues(status).Inc()
	c.runDuration.Observe(duration.Seconds())
}

func (c *Collector) ObserveProbe(model string, supported bool, duration time.Duration) {
	c.probesTotal.WithLabelValues(model, strconv.FormatBool(supported)).Inc()
	c.probeDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (c *Collector) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
