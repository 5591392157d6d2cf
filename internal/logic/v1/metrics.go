package v1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advocate_searches_total",
			Help: "Total number of advocate list queries",
		},
		[]string{"filtered"},
	)

	searchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advocate_search_results",
			Help:    "Number of records matching an advocate list query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	advocatesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advocates_created_total",
			Help: "Total number of advocate records created",
		},
	)

	createRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advocate_create_rejected_total",
			Help: "Total number of create requests rejected by validation",
		},
		[]string{"reason"},
	)
)
