package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dashboard service.
type Metrics struct {
	// Dataset loading metrics.
	DatasetLoads        prometheus.Counter
	DatasetLoadFailures prometheus.Counter
	DatasetLoadDuration prometheus.Histogram
	ObservationsLoaded  prometheus.Gauge
	DatasetReady        prometheus.Gauge

	// Request metrics.
	ChartRequests   *prometheus.CounterVec // labels: view
	CategoryQueries *prometheus.CounterVec // labels: outcome={success,unknown}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_dashboard",
			Name:      "dataset_loads_total",
			Help:      "Total dataset load attempts, successful or not.",
		}),
		DatasetLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_dashboard",
			Name:      "dataset_load_failures_total",
			Help:      "Total dataset loads that failed on a missing or malformed source.",
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aqi_dashboard",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete read-combine-melt-sort cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ObservationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aqi_dashboard",
			Name:      "observations_loaded",
			Help:      "Rows in the canonical dataset after the last successful load.",
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aqi_dashboard",
			Name:      "dataset_ready",
			Help:      "1 when a dataset is loaded and servable, 0 before first load.",
		}),
		ChartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_dashboard",
			Name:      "chart_requests_total",
			Help:      "Chart view renders by view name.",
		}, []string{"view"}),
		CategoryQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_dashboard",
			Name:      "category_queries_total",
			Help:      "Category filter queries by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadFailures,
		m.DatasetLoadDuration,
		m.ObservationsLoaded,
		m.DatasetReady,
		m.ChartRequests,
		m.CategoryQueries,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetLoads:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "aqi_dashboard", Name: "dataset_loads_total"}),
		DatasetLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "aqi_dashboard", Name: "dataset_load_failures_total"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "aqi_dashboard", Name: "dataset_load_duration_seconds"}),
		ObservationsLoaded:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "aqi_dashboard", Name: "observations_loaded"}),
		DatasetReady:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "aqi_dashboard", Name: "dataset_ready"}),
		ChartRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aqi_dashboard", Name: "chart_requests_total"}, []string{"view"}),
		CategoryQueries:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aqi_dashboard", Name: "category_queries_total"}, []string{"outcome"}),
	}
}
