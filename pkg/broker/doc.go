/*
Package broker provides the topic-based event fan-out at the heart of the
rsbar daemon.

The broker maps event topics to subscriber sinks and delivers every
triggered event to every sink on the topic, without ever blocking a
producer. It is the only path state changes take on their way from a
context to a connected client.

# Architecture

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │              EventHandler                   │          │
	│  │  - topic → subscriber list map              │          │
	│  │  - AddEvent: append sink, O(1) amortized    │          │
	│  │  - TriggerEvent: fan out "<topic>/<value>"  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Delivery (best-effort)             │          │
	│  │                                             │          │
	│  │  Producer → TriggerEvent(topic, value)      │          │
	│  │       ↓                                     │          │
	│  │  per-sink non-blocking Push                 │          │
	│  │       ↓                                     │          │
	│  │  Sink queues (capacity 32 each)             │          │
	│  │       ↓                                     │          │
	│  │  connection writer goroutines               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Failure handling                  │          │
	│  │  - queue full:   event dropped, counted     │          │
	│  │  - sink closed:  pruned from topic list     │          │
	│  │  - either way:   other sinks unaffected     │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Core Components

Sink:
  - Bounded FIFO (capacity 32) owned by one event connection
  - Non-blocking Push; returns false when full or closed
  - Unique id for log correlation across goroutines
  - Close is idempotent; Done exposes the closed signal

EventHandler:
  - Topic string → []*Sink subscriber map
  - AddEvent registers a subscription
  - TriggerEvent formats "<topic>/<value>" and fans it out
  - Prunes closed sinks as it encounters them

Topics:
  - Flat namespace of "<context>/<parameter>" strings
  - The prefix before the first '/' names the owning context
  - Values may themselves contain '/'; the topic boundary is fixed
    by the subscription string, not by re-parsing the message

# Delivery Semantics

Ordering:
  - Per (topic, sink): FIFO in TriggerEvent invocation order
  - Across topics to one sink: the interleaving of TriggerEvent calls
  - Across sinks: no guarantee

Back-pressure:
  - A slow client fills its own 32-slot queue and starts losing events
  - Producers never wait; other subscribers never notice
  - Drops are counted per topic in rsbar_events_dropped_total

Cancellation:
  - Closing a sink is the unsubscribe mechanism
  - The next TriggerEvent on each of its topics removes the dead entry
  - No explicit RemoveEvent call exists or is needed

# Usage

Subscribing and delivering:

	events := broker.NewEventHandler()

	sink := broker.NewSink()
	events.AddEvent("battery/capacity", sink)

	events.TriggerEvent("battery/capacity", "87")
	// sink now holds "battery/capacity/87"

Draining a sink from a connection writer:

	for {
		select {
		case msg := <-sink.Messages():
			if err := writer.WriteMessage(msg); err != nil {
				sink.Close()
				return
			}
		case <-sink.Done():
			return
		}
	}

# Integration Points

  - pkg/server: owns the single EventHandler shared by all contexts and
    registers subscriptions through it
  - pkg/contexts: every context receives the EventHandler at Init and
    publishes through TriggerEvent
  - pkg/api: creates one Sink per event connection and closes it when the
    peer disconnects
  - pkg/metrics: rsbar_events_published_total, rsbar_events_dropped_total,
    rsbar_subscriptions_total

# Design Patterns

Bounded-queue fan-out:
  - Replaces callback registration or observer inheritance
  - The queue is the subscriber; closing it is the cancellation
  - Producers are isolated from consumer speed by construction

Prune-on-trigger:
  - Dead sinks are detected lazily, at the next delivery attempt
  - Avoids a reverse index from sink to topics
  - A topic nobody triggers keeps its dead entries; they cost one
    pointer each and are swept the moment the topic fires again

# Troubleshooting

Events missing for one client:
  - Check rsbar_events_dropped_total for the topic
  - A full queue means the client reads too slowly; the protocol drops
    rather than stalls

Subscription count climbing:
  - rsbar_subscriptions_total decrements only when a closed sink is
    pruned, which requires a trigger on that topic
  - Sustained growth usually means clients reconnect-loop and resubscribe

# See Also

  - pkg/server - subscription registration and snapshot-on-subscribe
  - pkg/api - connection lifecycle that owns the sinks
  - pkg/wire - how queued messages are framed onto the socket
*/
package broker
