// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchComputationsTotal tracks match computations by outcome
	MatchComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "computations_total",
			Help:      "Total number of match computations by status",
		},
		[]string{"tenant_id", "status"},
	)

	// MatchComputationDuration tracks match computation duration in seconds
	MatchComputationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "computation_duration_seconds",
			Help:      "Duration of match computations in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"tenant_id"},
	)

	// MatchesFoundTotal tracks matches surfaced by type
	MatchesFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "matches_found_total",
			Help:      "Total number of matches surfaced by match type",
		},
		[]string{"tenant_id", "match_type"},
	)

	// MatchScores observes the distribution of final match scores
	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "match_scores",
			Help:      "Distribution of weighted match scores",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// MarketDataRequestsTotal tracks outbound market data provider requests
	MarketDataRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "market_data",
			Name:      "requests_total",
			Help:      "Total number of market data provider requests by status",
		},
		[]string{"status"},
	)

	// MarketDataCacheHitsTotal tracks fundamentals served from cache
	MarketDataCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "market_data",
			Name:      "cache_hits_total",
			Help:      "Total number of market data cache lookups by result",
		},
		[]string{"result"},
	)

	// CompaniesCreatedTotal tracks directory growth by provenance
	CompaniesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "directory",
			Name:      "companies_created_total",
			Help:      "Total number of companies created by data source",
		},
		[]string{"tenant_id", "data_source"},
	)
)
