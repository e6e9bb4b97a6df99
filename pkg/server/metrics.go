package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskparts_searches_total",
		Help: "The total number of product searches",
	})
	noSuggests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskparts_suggest_total",
		Help: "The total number of suggest requests",
	})
	facetSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskparts_facet_searches_total",
		Help: "The total number of facet option requests",
	})
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskparts_cache_hits_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slaskparts_query_duration_seconds",
		Help:    "Time spent running the query pipeline",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
	quoteRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskparts_quote_requests_total",
		Help: "The total number of accepted quote requests",
	})
	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskparts_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
	updatedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskparts_updated_items_total",
		Help: "The total number of products upserted through the admin api",
	})
	totalItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskparts_items",
		Help: "Number of products in the index",
	})
)
