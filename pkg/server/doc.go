/*
Package server provides the context registry and request router for the
rsbar daemon.

A Context is a named producer of event topics and acceptor of procedures;
concrete implementations live in pkg/contexts. The Server owns the
name-to-context map and the single event handler shared by every context,
and routes both request shapes of the wire protocol to the right context.

# Architecture

	┌───────────────────── SERVER ─────────────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │             Registry                        │          │
	│  │  name → Context map + registration order    │          │
	│  │  one shared broker.EventHandler             │          │
	│  │  one mutex over the whole surface           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│       ┌─────────────┼──────────────┐                      │
	│       ▼             ▼              ▼                      │
	│  ┌─────────┐  ┌───────────┐  ┌──────────────────┐        │
	│  │ Update  │  │ Dispatch  │  │ RegisterSubscr.  │        │
	│  │ (tick)  │  │ Call      │  │ (event socket)   │        │
	│  └────┬────┘  └─────┬─────┘  └────────┬─────────┘        │
	│       │             │                 │                   │
	│       ▼             ▼                 ▼                   │
	│  ctx.Update()  ctx.Call(p, a)   AddEvent + ForceEvents    │
	└──────────────────────────────────────────────────────────┘

# Core Components

Context interface:
  - Init(events): once after registration, before anything else
  - Update(): periodic refresh, driven by the scheduler
  - Call(procedure, arg): named procedure with one opaque argument
  - ForceEvents(): re-emit all topics at current values

Server:
  - Register(name, ctx): insert; duplicates overwrite (programmer error,
    logged)
  - Init(): initialize in registration order, first failure aborts
  - Update(): one cycle over all contexts, first failure aborts the cycle
  - DispatchCall(request): parse and route a call
  - RegisterSubscription(request, sink): validate, subscribe, snapshot

Request grammar:
  - Call: "<context>/<procedure>/<arg>" - exactly two '/' after trimming
  - Subscription: "<context>/<parameter>" - exactly one '/'
  - Wrong part counts fail with ErrMalformedRequest, unknown names with
    ErrUnknownContext; context-level failures pass through wrapped

# Locking Model

One mutex serializes Init, Update, DispatchCall and RegisterSubscription
against each other. That buys two invariants cheaply:

  - A context observes its own state mutations atomically per call
  - A subscription registered at time T sees the context's current
    snapshot before any later event

The broker keeps its own smaller mutex, so background producers (the
workspace listener) publish without taking the server lock.

# Snapshot on Subscribe

RegisterSubscription adds the sink first and then calls ForceEvents on the
owning context, so the new subscriber's first events are the current
values rather than whatever changes next. Existing subscribers of the same
topics receive the snapshot too; duplicate values are part of the
protocol and clients must tolerate them.

# Usage

	srv := server.New()
	srv.Register(contexts.VolumeName, contexts.NewVolumeContext(runner, ""))
	srv.Register(contexts.TimeName, contexts.NewTimeContext())

	if err := srv.Init(); err != nil {
		// fatal: a context's prerequisites are missing
	}

	err := srv.DispatchCall("volume/setVolume/42")
	err = srv.RegisterSubscription("volume/volume", sink)

# Integration Points

  - pkg/contexts: the five concrete Context implementations
  - pkg/broker: the shared EventHandler handed to every Init
  - pkg/api: socket handlers feed DispatchCall and RegisterSubscription
  - pkg/scheduler: drives Update once per tick and logs its error

# Design Patterns

Tagged capability registry:
  - No inheritance; variants differ only by stored state
  - New context kinds register at startup without framework changes
  - The registry never enumerates variants at compile time

Fail-soft routing:
  - Request errors are returned, logged by the caller, and forgotten
  - Only Init failures are allowed to end the process

# Troubleshooting

Calls appear to do nothing:
  - The call socket carries no responses; check the daemon log for
    "Call failed" lines and rsbar_calls_total{status="failed"}

Subscription gets no events:
  - Verify the context name: "volume/volum" fails with unknown context
    only if the prefix is wrong; a typo in the parameter just subscribes
    to a topic nothing publishes

# See Also

  - pkg/api - where requests come from
  - pkg/broker - where events go
  - pkg/scheduler - what calls Update
*/
package server
