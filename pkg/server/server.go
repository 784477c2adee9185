package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/broker"
	"github.com/rsbar/rsbar/pkg/log"
)

const (
	callRequestParts  = 3
	eventRequestParts = 2
)

var (
	// ErrMalformedRequest indicates a request with the wrong part count
	ErrMalformedRequest = errors.New("malformed request")

	// ErrUnknownContext indicates a request naming an unregistered context
	ErrUnknownContext = errors.New("unknown context")
)

// Context is the capability set every state producer implements.
//
// A context owns one or more event topics, all prefixed with its
// registration name, and zero or more callable procedures. After a
// successful Call the context re-emits its topics so subscribers observe
// the new state.
type Context interface {
	// Init is called once after registration, before any other method.
	// It hands the context the shared event handler and may spawn
	// background goroutines or open files.
	Init(events *broker.EventHandler) error

	// Update refreshes polled state and emits events for changed values.
	// It is driven by the periodic scheduler and must not block
	// indefinitely.
	Update() error

	// Call invokes a named procedure with a single opaque argument.
	Call(procedure string, arg string) error

	// ForceEvents re-emits all of the context's topics at their current
	// values.
	ForceEvents() error
}

// Server is the registry of named contexts and the request router. All
// state-touching operations are serialized behind one mutex, which gives
// serial consistency across the whole server surface.
type Server struct {
	mu       sync.Mutex
	contexts map[string]Context
	order    []string
	events   *broker.EventHandler
	logger   zerolog.Logger
}

// New creates an empty server with its own event handler
func New() *Server {
	return &Server{
		contexts: make(map[string]Context),
		events:   broker.NewEventHandler(),
		logger:   log.Component("server"),
	}
}

// Register inserts ctx under name. Registering the same name twice
// overwrites the previous context; that is a programmer error and is
// logged as such.
func (s *Server) Register(name string, ctx Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contexts[name]; exists {
		s.logger.Warn().Str("context", name).Msg("Context registered twice, overwriting")
	} else {
		s.order = append(s.order, name)
	}
	s.contexts[name] = ctx
}

// Init initializes all contexts in registration order, handing each the
// shared event handler. The first failure aborts and is returned.
func (s *Server) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.order {
		if err := s.contexts[name].Init(s.events); err != nil {
			return fmt.Errorf("init context %s: %w", name, err)
		}
	}
	return nil
}

// Update runs one update cycle over all contexts in registration order.
// The first failure aborts the cycle and surfaces to the caller.
func (s *Server) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.order {
		if err := s.contexts[name].Update(); err != nil {
			return fmt.Errorf("update context %s: %w", name, err)
		}
	}
	return nil
}

// DispatchCall parses a call request of the form
// "<context>/<procedure>/<arg>" and routes it to the named context.
func (s *Server) DispatchCall(request string) error {
	parts, ok := splitRequest(request, callRequestParts)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMalformedRequest, request)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, exists := s.contexts[parts[0]]
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownContext, parts[0])
	}

	return ctx.Call(parts[1], parts[2])
}

// RegisterSubscription parses a subscription request of the form
// "<context>/<parameter>", adds sink to the topic's subscriber list and then
// forces a snapshot of the named context's topics. The snapshot may also
// re-notify existing subscribers; that is accepted behavior.
func (s *Server) RegisterSubscription(request string, sink *broker.Sink) error {
	parts, ok := splitRequest(request, eventRequestParts)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMalformedRequest, request)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, exists := s.contexts[parts[0]]
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownContext, parts[0])
	}

	topic := parts[0] + "/" + parts[1]
	s.events.AddEvent(topic, sink)

	// Emit the current snapshot after subscribing so the new sink sees it
	if err := ctx.ForceEvents(); err != nil {
		s.logger.Warn().
			Err(err).
			Str("context", parts[0]).
			Msg("Snapshot emission failed for new subscription")
	}

	return nil
}

// Events returns the shared event handler
func (s *Server) Events() *broker.EventHandler {
	return s.events
}

// splitRequest trims surrounding whitespace and splits the request on '/',
// requiring exactly want parts.
func splitRequest(request string, want int) ([]string, bool) {
	parts := strings.Split(strings.TrimSpace(request), "/")
	if len(parts) != want {
		return nil, false
	}
	return parts, true
}
