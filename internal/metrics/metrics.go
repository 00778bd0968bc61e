package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DBQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunchly_db_queries_total",
			Help: "Repository queries by repository, operation and outcome",
		},
		[]string{"repo", "op", "outcome"}, // outcome: ok|not_found|error
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lunchly_db_query_duration_seconds",
			Help:    "Repository query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"repo", "op"},
	)

	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunchly_cache_requests_total",
			Help: "Ranking cache lookups by result",
		},
		[]string{"result"}, // hit|miss|error
	)

	BookingsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunchly_bookings_consumed_total",
			Help: "Bookings read from Kafka by outcome",
		},
		[]string{"outcome"}, // stored|skipped|failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		DBQueriesTotal,
		DBQueryDuration,
		CacheRequestsTotal,
		BookingsConsumedTotal,
	)
}

// ObserveQuery records one repository round trip.
func ObserveQuery(repo, op, outcome string, started time.Time) {
	DBQueriesTotal.WithLabelValues(repo, op, outcome).Inc()
	DBQueryDuration.WithLabelValues(repo, op).Observe(time.Since(started).Seconds())
}
