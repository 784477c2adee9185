package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Broker metrics
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsbar_events_published_total",
			Help: "Total number of events delivered to subscriber queues by topic",
		},
		[]string{"topic"},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsbar_events_dropped_total",
			Help: "Total number of events dropped because a subscriber queue was full",
		},
		[]string{"topic"},
	)

	SubscriptionsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rsbar_subscriptions_total",
			Help: "Current number of registered topic subscriptions",
		},
	)

	// Socket metrics
	ConnectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rsbar_connections_active",
			Help: "Current number of client connections by socket",
		},
		[]string{"socket"},
	)

	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsbar_calls_total",
			Help: "Total number of dispatched calls by status",
		},
		[]string{"status"},
	)

	// Scheduler metrics
	UpdateCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rsbar_update_cycles_total",
			Help: "Total number of completed update cycles",
		},
	)

	UpdateCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rsbar_update_cycle_duration_seconds",
			Help:    "Time taken for one update cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		EventsPublished,
		EventsDropped,
		SubscriptionsTotal,
		ConnectionsActive,
		CallsTotal,
		UpdateCyclesTotal,
		UpdateCycleDuration,
	)
}

// Handler returns the HTTP handler exposing all registered metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer starts the metrics HTTP server on the given address.
// It exposes /metrics, /health and /ready endpoints.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/ready", ReadinessHandler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server.ListenAndServe()
}
