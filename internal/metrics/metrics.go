// Package metrics exposes Prometheus counters for the import pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportsTotal counts import attempts by source type and outcome.
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docbridge",
		Name:      "imports_total",
		Help:      "Document import attempts by source type and outcome.",
	}, []string{"source_type", "outcome"})

	// ImportDuration observes end-to-end import latency per source type.
	ImportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "docbridge",
		Name:      "import_duration_seconds",
		Help:      "End-to-end import latency by source type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source_type"})

	// ExtractionsTotal counts content extractions by method.
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docbridge",
		Name:      "extractions_total",
		Help:      "Content extractions by method.",
	}, []string{"method"})
)
