package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TraversalsTotal counts finished traversals by outcome
	TraversalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpager_traversals_total",
			Help: "Total number of traversals by outcome",
		},
		[]string{"outcome"}, // "complete", "limit", "failed"
	)

	// PagesTotal counts completed page requests
	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpager_pages_total",
			Help: "Total number of completed page requests by front and result",
		},
		[]string{"front", "result"}, // result: "ok", "error"
	)

	// TraversalPages observes the number of slots per traversal
	TraversalPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkpager_traversal_pages",
			Help:    "Number of pages returned per traversal",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
