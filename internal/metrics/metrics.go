// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes recorded by RecordSearch.
const (
	SearchHit        = "hit"
	SearchMiss       = "miss"
	SearchEmptyQuery = "empty_query"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Update handling metrics
	UpdatesTotal          *prometheus.CounterVec
	UpdateDurationSeconds *prometheus.HistogramVec

	// Search metrics
	SearchTotal           *prometheus.CounterVec
	SearchDurationSeconds prometheus.Histogram
	SearchResults         prometheus.Histogram

	// Outbound send metrics
	SendTotal *prometheus.CounterVec

	// Catalog metrics
	CatalogBooks     prometheus.Gauge
	CatalogLoadTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		UpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prep_updates_total",
				Help: "Total number of inbound chat updates by platform, event type and status",
			},
			[]string{"platform", "event_type", "status"}, // status: success, error, ignored
		),

		UpdateDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prep_update_duration_seconds",
				Help:    "Time spent handling one inbound update, sends included",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"platform", "event_type"},
		),

		SearchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prep_search_total",
				Help: "Total number of catalog searches by outcome",
			},
			[]string{"outcome"}, // outcome: hit, miss, empty_query
		),

		SearchDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prep_search_duration_seconds",
				Help:    "Fuzzy search duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),

		SearchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prep_search_results",
				Help:    "Number of books returned per search",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),

		SendTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prep_send_total",
				Help: "Total number of outbound messages by platform, payload kind and status",
			},
			[]string{"platform", "kind", "status"}, // kind: plain, text, photo, reply (LINE batch)
		),

		CatalogBooks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "prep_catalog_books",
				Help: "Number of searchable books in the loaded catalog",
			},
		),

		CatalogLoadTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prep_catalog_load_total",
				Help: "Total number of catalog load attempts by status",
			},
			[]string{"status"}, // status: loaded, empty, unavailable
		),
	}
}

// RecordUpdate records one handled inbound update
func (m *Metrics) RecordUpdate(platform, eventType, status string, duration float64) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(platform, eventType, status).Inc()
	m.UpdateDurationSeconds.WithLabelValues(platform, eventType).Observe(duration)
}

// RecordSearch records a search outcome with its duration and result count
func (m *Metrics) RecordSearch(outcome string, results int, duration float64) {
	if m == nil {
		return
	}
	m.SearchTotal.WithLabelValues(outcome).Inc()
	m.SearchDurationSeconds.Observe(duration)
	m.SearchResults.Observe(float64(results))
}

// RecordSend records an outbound message attempt
func (m *Metrics) RecordSend(platform, kind, status string) {
	if m == nil {
		return
	}
	m.SendTotal.WithLabelValues(platform, kind, status).Inc()
}

// RecordCatalogLoad records a catalog load and the resulting book count
func (m *Metrics) RecordCatalogLoad(status string, books int) {
	if m == nil {
		return
	}
	m.CatalogLoadTotal.WithLabelValues(status).Inc()
	m.CatalogBooks.Set(float64(books))
}
