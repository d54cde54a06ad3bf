package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequests counts handled requests by method, route and status
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "foodgram_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"method", "route", "status"},
)

// HTTPLatency records request latency by method and route
var HTTPLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "foodgram_http_request_duration_seconds",
		Help:    "Latency in seconds to serve HTTP requests",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// Domain counters
var (
	RecipesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_recipes_created_total",
			Help: "Total number of recipes created",
		},
	)

	// ListToggles counts favorite and shopping cart membership changes.
	ListToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_list_toggles_total",
			Help: "Favorite and shopping cart additions and removals",
		},
		[]string{"list", "action"},
	)

	SubscriptionToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_subscription_toggles_total",
			Help: "Subscriptions created and removed",
		},
		[]string{"action"},
	)

	ShortLinksResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_links_resolved_total",
			Help: "Short link lookups by result (hit, miss, cache)",
		},
		[]string{"result"},
	)
)

// Database connection pool metrics
var (
	DBOpenConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foodgram_db_open_connections",
			Help: "Number of open connections in the DB pool",
		},
		[]string{"db"},
	)

	DBIdleConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foodgram_db_idle_connections",
			Help: "Number of idle connections in the DB pool",
		},
		[]string{"db"},
	)

	DBInUseConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foodgram_db_in_use_connections",
			Help: "Number of in-use connections in the DB pool",
		},
		[]string{"db"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency)
	prometheus.MustRegister(RecipesCreated, ListToggles, SubscriptionToggles, ShortLinksResolved)
	prometheus.MustRegister(DBOpenConns, DBIdleConns, DBInUseConns)
}
