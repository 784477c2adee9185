/*
Package scheduler drives the periodic update cycle of the rsbar daemon.

Every tick the scheduler calls Update on the server, which refreshes each
registered context in turn and emits events for changed values. It is the
only component that initiates polling; everything else in the daemon
reacts to requests or external events.

# Architecture

	┌────────────────────────────────────────────────┐
	│              Scheduler Loop                    │
	│             (every 1 second)                   │
	└──────────────────┬─────────────────────────────┘
	                   │ tick
	                   ▼
	┌────────────────────────────────────────────────┐
	│  Server.Update()                               │
	│    volume.Update()     → mixer tool            │
	│    brightness.Update() → backlight tool        │
	│    hyprland.Update()   → no-op (event-driven)  │
	│    time.Update()       → clock                 │
	│    battery.Update()    → sysfs re-read         │
	└──────────────────┬─────────────────────────────┘
	                   │
	          ok ──────┼────── error
	           │               │
	           ▼               ▼
	   observe duration   log, mark unhealthy,
	   count the cycle    retry next tick

# Core Components

Scheduler:
  - New(srv, interval): zero interval selects the 1 s default
  - Start/Stop: goroutine with a ticker and a stop channel
  - One failed cycle is logged and marks the scheduler component
    unhealthy; the next successful cycle clears it

Cadence:
  - A single fixed period for all contexts; there is no per-context
    cadence by design
  - Event-driven contexts make Update a no-op rather than opting out

# Usage

	sched := scheduler.New(srv, cfg.PollInterval)
	sched.Start()
	defer sched.Stop()

# Integration Points

  - pkg/server: Update is the only method the scheduler calls
  - pkg/metrics: rsbar_update_cycles_total, the cycle duration
    histogram, and the "scheduler" health component

# Failure Behavior

The update cycle aborts at the first failing context and the error names
it. Because the cycle re-runs from the top every tick, a persistently
broken context also starves the contexts registered after it of updates;
their subscribers coast on snapshots until the breakage clears. That is
the accepted cost of keeping cycles strictly ordered.

# See Also

  - pkg/server - cycle semantics and ordering
  - pkg/contexts - what each Update actually does
*/
package scheduler
