package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route template, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dndinfo_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dndinfo_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ModerationActionsTotal counts moderation state changes by kind and action.
	ModerationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dndinfo_moderation_actions_total",
		Help: "Total number of moderation actions applied",
	}, []string{"kind", "action"})

	// SimilarResultSize records how many related items a lookup returned.
	SimilarResultSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dndinfo_similar_result_size",
		Help:    "Number of items returned by the similarity finder",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	}, []string{"kind"})

	// ImportItemsTotal counts imported items by kind and outcome (created, existing, failed).
	ImportItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dndinfo_import_items_total",
		Help: "Total number of items processed by the importer",
	}, []string{"kind", "outcome"})
)
