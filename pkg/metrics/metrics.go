package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SPARQLQueries records outbound SPARQL requests by result (success|network_error|query_error).
	SPARQLQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgcatalog_sparql_queries_total",
			Help: "Total number of SPARQL queries issued to the endpoint",
		},
		[]string{"result"},
	)

	// CacheLookups counts result-cache lookups and their outcome (hit|miss|stale|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgcatalog_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"outcome"},
	)

	// CatalogRows tracks the number of ranked rows served per resource kind.
	CatalogRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kgcatalog_rows",
			Help: "Number of cleaned catalog rows for the last successful fetch",
		},
		[]string{"kind"},
	)

	// DroppedRows counts raw rows discarded during cleaning.
	DroppedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgcatalog_dropped_rows_total",
			Help: "Raw result rows dropped for missing required fields",
		},
		[]string{"kind"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kgcatalog_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
