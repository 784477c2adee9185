/*
Package metrics provides Prometheus metrics and health checking for rsbar.

The package exports the daemon's instrumentation surface and a small
component-health registry, served together over one optional HTTP
endpoint. Nothing here is on any hot path's failure route: metrics record
what happened, they never change it.

# Architecture

	┌──────────────────── METRICS ─────────────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Collectors (prometheus)            │          │
	│  │  broker:    events published / dropped,     │          │
	│  │             live subscriptions              │          │
	│  │  sockets:   active connections, calls       │          │
	│  │             by status                       │          │
	│  │  scheduler: cycle count, cycle duration     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │       Component Health Registry             │          │
	│  │  call_socket / event_socket / scheduler /   │          │
	│  │  battery …  → healthy + message             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │        HTTP Server (optional)               │          │
	│  │  /metrics  prometheus exposition            │          │
	│  │  /health   overall + per-component JSON     │          │
	│  │  /ready    both listeners up                │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Core Components

Collectors:
  - Package-level vars registered once at import
  - Topic-labeled counters stay low-cardinality because the topic set
    is fixed by the registered contexts

Timer:
  - NewTimer captures a start time; ObserveDuration feeds a histogram
  - Used by the scheduler around each update cycle

Health registry:
  - RegisterComponent/UpdateComponent record a boolean plus message
  - GetHealth aggregates: one unhealthy component makes the daemon
    unhealthy
  - Readiness is narrower: only the two socket listeners gate /ready

StartServer:
  - Serves /metrics, /health and /ready on the configured address
  - Not started at all when no metrics address is configured, which is
    the default

# Usage

	metrics.CallsTotal.WithLabelValues("ok").Inc()

	timer := metrics.NewTimer()
	// ... one update cycle ...
	timer.ObserveDuration(metrics.UpdateCycleDuration)

	metrics.UpdateComponent("scheduler", false, err.Error())

	go func() {
		if err := metrics.StartServer(":9090"); err != nil {
			log.Logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

# Integration Points

  - pkg/broker: publish/drop/subscription accounting
  - pkg/api: connection gauge, call counter, listener health components
  - pkg/scheduler: cycle counter, duration histogram, scheduler health
  - cmd/rsbard: version string and server startup

# Monitoring

Useful queries:

	rate(rsbar_events_dropped_total[5m]) > 0     slow subscriber
	rate(rsbar_calls_total{status="failed"}[5m]) misbehaving client or tool
	rsbar_connections_active                     bar client presence
	histogram_quantile(0.99,
	  rsbar_update_cycle_duration_seconds_bucket) slow external tool

# See Also

  - pkg/scheduler - the main Timer user
  - pkg/broker - drop semantics behind the dropped-events counter
*/
package metrics
