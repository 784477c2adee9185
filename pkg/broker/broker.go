package broker

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/log"
	"github.com/rsbar/rsbar/pkg/metrics"
)

// QueueDepth is the per-sink queue capacity. A subscriber that falls more
// than QueueDepth events behind starts losing events instead of stalling
// the producers.
const QueueDepth = 32

// Sink is the write end of one event connection's bounded queue
type Sink struct {
	id   string
	ch   chan string
	done chan struct{}
	once sync.Once
}

// NewSink creates a sink with the standard queue capacity
func NewSink() *Sink {
	return &Sink{
		id:   uuid.New().String(),
		ch:   make(chan string, QueueDepth),
		done: make(chan struct{}),
	}
}

// ID returns the sink's unique identifier, used for log correlation
func (s *Sink) ID() string {
	return s.id
}

// Push enqueues a message without blocking. It returns false when the
// queue is full or the sink is closed.
func (s *Sink) Push(message string) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.ch <- message:
		return true
	default:
		return false
	}
}

// Messages returns the receive side of the queue
func (s *Sink) Messages() <-chan string {
	return s.ch
}

// Done is closed when the sink is closed
func (s *Sink) Done() <-chan struct{} {
	return s.done
}

// Close marks the sink closed. Safe to call more than once.
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// IsClosed reports whether Close has been called
func (s *Sink) IsClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// EventHandler fans events out to topic subscribers
type EventHandler struct {
	mu     sync.Mutex
	topics map[string][]*Sink
	logger zerolog.Logger
}

// NewEventHandler creates an empty event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{
		topics: make(map[string][]*Sink),
		logger: log.Component("broker"),
	}
}

// AddEvent appends sink to the topic's subscriber list
func (h *EventHandler) AddEvent(topic string, sink *Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.topics[topic] = append(h.topics[topic], sink)
	metrics.SubscriptionsTotal.Inc()

	h.logger.Debug().
		Str("topic", topic).
		Str("sink_id", sink.ID()).
		Msg("Subscription added")
}

// TriggerEvent enqueues "<topic>/<value>" for every sink subscribed to
// topic. Delivery is best-effort: full queues are skipped, closed sinks are
// pruned from the subscriber list. Other sinks are unaffected either way.
func (h *EventHandler) TriggerEvent(topic string, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sinks, ok := h.topics[topic]
	if !ok {
		return
	}

	message := topic + "/" + value

	live := sinks[:0]
	for _, sink := range sinks {
		if sink.IsClosed() {
			metrics.SubscriptionsTotal.Dec()
			h.logger.Debug().
				Str("topic", topic).
				Str("sink_id", sink.ID()).
				Msg("Pruned closed subscriber")
			continue
		}

		live = append(live, sink)

		if sink.Push(message) {
			metrics.EventsPublished.WithLabelValues(topic).Inc()
		} else {
			metrics.EventsDropped.WithLabelValues(topic).Inc()
			h.logger.Debug().
				Str("topic", topic).
				Str("sink_id", sink.ID()).
				Msg("Subscriber queue full, event dropped")
		}
	}

	h.topics[topic] = live
}

// SubscriberCount returns the number of sinks subscribed to topic
func (h *EventHandler) SubscriberCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
