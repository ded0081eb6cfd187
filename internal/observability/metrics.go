package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the exercise pipeline.
type Metrics struct {
	RunsCompleted   prometheus.Counter
	RunErrors       prometheus.Counter
	ReportsLoaded   *prometheus.CounterVec // labels: loader
	LoadRetries     prometheus.Counter
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Histogram

	// Exercise metrics.
	SmoothingPasses   prometheus.Counter
	WindRecordsParsed prometheus.Counter
	RefilterCache     *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stencil_lab",
			Name:      "runs_completed_total",
			Help:      "Total exercise runs that produced a report.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stencil_lab",
			Name:      "run_errors_total",
			Help:      "Total exercise runs that failed.",
		}),
		ReportsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stencil_lab",
			Name:      "reports_loaded_total",
			Help:      "Reports handed to a loader, by loader.",
		}, []string{"loader"}),
		LoadRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stencil_lab",
			Name:      "load_retries_total",
			Help:      "Report load attempts that failed and were retried.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stencil_lab",
			Name:      "pipeline_running",
			Help:      "1 while an exercise run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stencil_lab",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete exercise run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SmoothingPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stencil_lab",
			Name:      "smoothing_passes_total",
			Help:      "Total 5-point stencil applications across all channels.",
		}),
		WindRecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stencil_lab",
			Name:      "wind_records_parsed_total",
			Help:      "Total daily wind rows parsed.",
		}),
		RefilterCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stencil_lab",
			Name:      "refilter_cache_total",
			Help:      "Refilter cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RunsCompleted,
		m.RunErrors,
		m.ReportsLoaded,
		m.LoadRetries,
		m.PipelineRunning,
		m.RunDuration,
		m.SmoothingPasses,
		m.WindRecordsParsed,
		m.RefilterCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsCompleted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stencil_lab", Name: "runs_completed_total"}),
		RunErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stencil_lab", Name: "run_errors_total"}),
		ReportsLoaded:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "stencil_lab", Name: "reports_loaded_total"}, []string{"loader"}),
		LoadRetries:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stencil_lab", Name: "load_retries_total"}),
		PipelineRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "stencil_lab", Name: "pipeline_running"}),
		RunDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "stencil_lab", Name: "run_duration_seconds"}),
		SmoothingPasses:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stencil_lab", Name: "smoothing_passes_total"}),
		WindRecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stencil_lab", Name: "wind_records_parsed_total"}),
		RefilterCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "stencil_lab", Name: "refilter_cache_total"}, []string{"result"}),
	}
}
