package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry      *prometheus.Registry
	PagesTotal    prometheus.Counter
	FetchDuration prometheus.Histogram
	ItemsTotal    *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_pages_total",
			Help: "Total result pages processed by the crawler.",
		},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_fetch_duration_seconds",
			Help:    "Page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_items_total",
			Help: "Listings seen by the crawler, by outcome.",
		},
		[]string{"outcome"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Total crawler errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(pages, fetchDuration, items, errorsTotal)

	return &Metrics{
		Registry:      registry,
		PagesTotal:    pages,
		FetchDuration: fetchDuration,
		ItemsTotal:    items,
		ErrorsTotal:   errorsTotal,
	}
}

// IncPages increments the processed-pages counter.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
}

// ObserveFetch records a page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// AddItems adds to the items counter for an outcome label.
func (m *Metrics) AddItems(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ItemsTotal.WithLabelValues(outcome).Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
