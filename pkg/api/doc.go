/*
Package api serves the rsbar daemon's two Unix-socket endpoints.

The call socket accepts framed requests that mutate state; the event
socket accepts subscription requests and streams matching event frames
back. Together they are the daemon's entire client surface: there is no
other way in or out.

# Architecture

	┌──────────────────── SOCKET SURFACE ──────────────────────┐
	│                                                           │
	│  /tmp/rsbar_call.sock          /tmp/rsbar_event.sock      │
	│         │                              │                  │
	│    accept loop                    accept loop             │
	│         │                              │                  │
	│   ┌─────▼──────┐               ┌───────▼────────┐         │
	│   │ per-conn   │               │ per-conn       │         │
	│   │ reader     │               │ reader + sink  │         │
	│   │            │               │ + writer task  │         │
	│   │ frame →    │               │                │         │
	│   │ Dispatch   │               │ frame →        │         │
	│   │ Call       │               │ RegisterSubscr.│         │
	│   └────────────┘               │                │         │
	│                                │ sink → frame → │         │
	│                                │ peer           │         │
	│                                └────────────────┘         │
	└──────────────────────────────────────────────────────────┘

# Core Components

Listeners:
  - Binds both sockets (removing stale files first) and runs one accept
    loop per socket
  - Start returns bind errors to the caller; they are fatal for the
    daemon
  - Stop closes the listeners; established connections drain naturally

Call connection handler:
  - Reads NUL-framed requests until EOF or I/O error
  - Each frame goes through Server.DispatchCall
  - Failures are logged at warn and the connection keeps reading; a bad
    request never costs the client its connection

Event connection handler:
  - Allocates one capacity-32 broker.Sink per connection
  - A writer goroutine drains the sink and frames values onto the
    socket, exiting on the first write failure
  - The reader treats every frame as a subscription request; failures
    are logged and the connection continues
  - Reader EOF closes the sink, which stops the writer and lets the
    broker prune the subscription

# Connection Lifecycle

	connect ──▶ reader goroutine (+ writer goroutine on event socket)
	   │
	   ▼
	frames flow until the peer disconnects
	   │
	   ▼
	EOF ──▶ sink closed ──▶ writer exits ──▶ broker prunes on next trigger

There are no client-visible timeouts and no responses on the call
socket; absent events are the only symptom a client sees of failure.

# Usage

	listeners := api.NewListeners(srv, "", "")  // default /tmp paths
	if err := listeners.Start(); err != nil {
		// bind failure: exit nonzero
	}
	defer listeners.Stop()

Tests point the paths somewhere disposable:

	l := api.NewListeners(srv, dir+"/call.sock", dir+"/event.sock")

# Integration Points

  - pkg/server: DispatchCall and RegisterSubscription do the real work
  - pkg/broker: one Sink per event connection
  - pkg/wire: all framing on both sockets
  - pkg/metrics: rsbar_connections_active by socket, rsbar_calls_total
    by status, and the call_socket/event_socket health components behind
    /ready

# Security Model

The trust boundary is the socket file permissions: any local process
that can open the socket is a legitimate client. There is no
authentication, no authorization and no rate limiting, matching the
protocol this daemon speaks.

# Troubleshooting

Bind failure at startup:
  - Another daemon instance owns the path, or the directory is not
    writable; stale files from a crashed instance are removed
    automatically and are not the cause

Client sees its connection die:
  - Only reader I/O errors end a connection; check the daemon log -
    malformed requests alone never close it

Events stop mid-session:
  - The writer exits on its first failed write and the sink closes;
    reconnect and resubscribe, snapshots bring the client current

# See Also

  - pkg/wire - frame format details
  - pkg/server - request grammar and routing errors
  - pkg/broker - delivery and drop semantics
*/
package api
