// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Venue metrics
	VenueRequests        *prometheus.CounterVec
	VenueRequestLatency  *prometheus.HistogramVec
	FillsFetched         prometheus.Counter
	LedgerEntriesFetched prometheus.Counter

	// Price source metrics
	PriceFetches     *prometheus.CounterVec
	PriceCacheHits   prometheus.Counter
	PriceCacheMisses prometheus.Counter

	// Analysis metrics
	AnalysesComputed      *prometheus.CounterVec
	AnalysisDuration      prometheus.Histogram
	PersonalitiesAssigned *prometheus.CounterVec
	SharesEncoded         prometheus.Counter
	SharesDecoded         *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulAnalysis prometheus.Gauge
	UptimeSeconds          prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trading_wrapped"
	}

	return &Metrics{
		// Venue metrics
		VenueRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "requests_total",
			Help:      "Total number of venue API requests by type and status",
		}, []string{"request_type", "status"}),
		VenueRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "request_latency_seconds",
			Help:      "Venue API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"request_type"}),
		FillsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "fills_fetched_total",
			Help:      "Total number of fills fetched from the venue",
		}),
		LedgerEntriesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "ledger_entries_fetched_total",
			Help:      "Total number of ledger entries fetched from the venue",
		}),

		// Price source metrics
		PriceFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "fetches_total",
			Help:      "Total number of upstream price fetches by asset and status",
		}, []string{"asset", "status"}),
		PriceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "cache_hits_total",
			Help:      "Total number of price cache hits",
		}),
		PriceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "cache_misses_total",
			Help:      "Total number of price cache misses",
		}),

		// Analysis metrics
		AnalysesComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "computed_total",
			Help:      "Total number of wallet analyses computed by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End-to-end wallet analysis duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PersonalitiesAssigned: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "personalities_assigned_total",
			Help:      "Total number of personality assignments by personality id",
		}, []string{"personality"}),
		SharesEncoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "share",
			Name:      "encoded_total",
			Help:      "Total number of share tokens encoded",
		}),
		SharesDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "share",
			Name:      "decoded_total",
			Help:      "Total number of share token decode attempts by status",
		}, []string{"status"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulAnalysis: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful wallet analysis",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordVenueRequest records a venue API call.
func RecordVenueRequest(requestType, status string, seconds float64) {
	DefaultMetrics.VenueRequests.WithLabelValues(requestType, status).Inc()
	DefaultMetrics.VenueRequestLatency.WithLabelValues(requestType).Observe(seconds)
}

// RecordFillsFetched adds to the fills fetched counter.
func RecordFillsFetched(n int) {
	DefaultMetrics.FillsFetched.Add(float64(n))
}

// RecordLedgerEntriesFetched adds to the ledger entries fetched counter.
func RecordLedgerEntriesFetched(n int) {
	DefaultMetrics.LedgerEntriesFetched.Add(float64(n))
}

// RecordPriceFetch records an upstream price fetch.
func RecordPriceFetch(asset, status string) {
	DefaultMetrics.PriceFetches.WithLabelValues(asset, status).Inc()
}

// RecordPriceCacheHit increments the price cache hit counter.
func RecordPriceCacheHit() {
	DefaultMetrics.PriceCacheHits.Inc()
}

// RecordPriceCacheMiss increments the price cache miss counter.
func RecordPriceCacheMiss() {
	DefaultMetrics.PriceCacheMisses.Inc()
}

// RecordAnalysis records a completed wallet analysis.
func RecordAnalysis(status string, seconds float64) {
	DefaultMetrics.AnalysesComputed.WithLabelValues(status).Inc()
	DefaultMetrics.AnalysisDuration.Observe(seconds)
}

// RecordPersonality records a personality assignment.
func RecordPersonality(id string) {
	DefaultMetrics.PersonalitiesAssigned.WithLabelValues(id).Inc()
}

// RecordShareEncoded increments the share tokens encoded counter.
func RecordShareEncoded() {
	DefaultMetrics.SharesEncoded.Inc()
}

// RecordShareDecoded records a share token decode attempt.
func RecordShareDecoded(status string) {
	DefaultMetrics.SharesDecoded.WithLabelValues(status).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
