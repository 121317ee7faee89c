// Package bsets implements the engine's Prometheus metrics collectors.
//
// A Metrics value is optional: an engine built without one (the zero
// value) simply performs no observations. Query, explanation, and
// build paths accept a *Metrics and check it for nil before recording,
// so instrumentation never changes behavior, only observability.
package bsets

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one engine instance.
type Metrics struct {
	QueriesTotal        *prometheus.CounterVec
	QueryLatency        prometheus.Histogram
	ResultsReturned     prometheus.Histogram
	ExplanationsTotal   prometheus.Counter
	PairsIndexedTotal   prometheus.Counter
	BuildDuration       prometheus.Histogram
	CacheLoadsTotal     *prometheus.CounterVec
	ActiveItemsGauge    prometheus.Gauge
	ActiveFeaturesGauge prometheus.Gauge
}

// NewMetrics creates and registers the engine's Prometheus collectors
// under the given namespace, using the default registry.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total queries by outcome (ok, empty, cancelled).",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_latency_seconds",
				Help:      "Query evaluation latency, from id resolution to ranked results.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		ResultsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "results_returned",
				Help:      "Number of results returned per query.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		ExplanationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "explanations_total",
				Help:      "Total candidate explanations produced by GetDetailedScores.",
			},
		),
		PairsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pairs_indexed_total",
				Help:      "Total (item, feature) pairs added to raw indexes.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "index_build_duration_seconds",
				Help:      "Time to load a raw index directory into a ComputedIndex.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CacheLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_loads_total",
				Help:      "Total cache bundle loads by outcome (hit, miss, error).",
			},
			[]string{"outcome"},
		),
		ActiveItemsGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_items",
				Help:      "Number of items in the currently loaded index.",
			},
		),
		ActiveFeaturesGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_features",
				Help:      "Number of features in the currently loaded index.",
			},
		),
	}

	prometheus.MustRegister(
		m.QueriesTotal,
		m.QueryLatency,
		m.ResultsReturned,
		m.ExplanationsTotal,
		m.PairsIndexedTotal,
		m.BuildDuration,
		m.CacheLoadsTotal,
		m.ActiveItemsGauge,
		m.ActiveFeaturesGauge,
	)

	return m
}

// ObserveIndexLoaded records the size of a newly loaded index. A nil
// Metrics is a no-op.
func (m *Metrics) ObserveIndexLoaded(c *ComputedIndex) {
	if m == nil {
		return
	}
	m.ActiveItemsGauge.Set(float64(c.NumItems()))
	m.ActiveFeaturesGauge.Set(float64(c.NumFeatures()))
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
