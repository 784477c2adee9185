/*
Package log provides structured logging for rsbar using zerolog.

The package configures one process-wide root logger and derives child
loggers that pin the fields the daemon's log lines are queried by: which
component wrote the line, which context it concerns, and which client
connection it belongs to.

# Architecture

	┌──────────────────── LOGGING ─────────────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Root Logger                      │          │
	│  │  - usable before Setup (stderr, info)       │          │
	│  │  - Setup: level + format + destination      │          │
	│  │  - unknown level names are errors           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Child Loggers                      │          │
	│  │  Component("broker")   component=broker     │          │
	│  │  ForContext("volume")  context=volume       │          │
	│  │  ForConnection(s, id)  socket=… sink_id=…   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Output                           │          │
	│  │  console (default, user session):           │          │
	│  │   12:30:00 WRN Subscriber queue full …      │          │
	│  │  JSON (aggregation):                        │          │
	│  │   {"level":"warn","component":"broker",…}   │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Core Components

Setup:
  - Parses the level name with zerolog's own table; "loud" is an error,
    not a silent info fallback
  - Console format by default, JSON on request, any io.Writer as
    destination (nil means stderr)

Component / ForContext:
  - One fixed field each; components are the daemon's moving parts
    (broker, scheduler, api, server), contexts are registration names,
    so log lines line up with topic prefixes

ForConnection:
  - Carries the socket name and the connection's sink id together
  - The sink id is the correlation key: a subscription request, the
    deliveries it produces and the drop or disconnect that ends it all
    share one id across three goroutines

# Usage

	if err := log.Setup("debug", false, nil); err != nil {
		// bad --log-level value
	}

	logger := log.Component("scheduler")
	logger.Error().Err(err).Msg("Update cycle failed")

	connLog := log.ForConnection("event", sink.ID())
	connLog.Info().Str("request", req).Msg("Subscription request")

# Integration Points

  - cmd/rsbard: Setup runs from cobra's OnInitialize, then again once the
    config is loaded, taking level and format from the config wherever
    the matching flag was not given
  - every pkg: child loggers are created once, at construction, and
    reused for the component's lifetime

# Design Notes

The root logger carries its level itself (zerolog's Level method) rather
than going through the global level, so tests can reconfigure freely
without cross-test bleed. Log lines are the daemon's only failure
surface for calls - the call socket returns nothing - which is why the
request string is logged verbatim at warn on every failure.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - pkg/api - where connection correlation matters most
*/
package log
