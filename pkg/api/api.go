package api

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/broker"
	"github.com/rsbar/rsbar/pkg/log"
	"github.com/rsbar/rsbar/pkg/metrics"
	"github.com/rsbar/rsbar/pkg/server"
	"github.com/rsbar/rsbar/pkg/wire"
)

// Default socket locations. Clients hard-code these, so they are part of
// the wire protocol.
const (
	DefaultCallSocket  = "/tmp/rsbar_call.sock"
	DefaultEventSocket = "/tmp/rsbar_event.sock"
)

// Listeners serves the call and event sockets for one server
type Listeners struct {
	server *server.Server

	callPath  string
	eventPath string

	callLn  net.Listener
	eventLn net.Listener

	logger zerolog.Logger
}

// NewListeners creates the socket surface for srv. Empty paths select the
// default socket locations.
func NewListeners(srv *server.Server, callPath string, eventPath string) *Listeners {
	if callPath == "" {
		callPath = DefaultCallSocket
	}
	if eventPath == "" {
		eventPath = DefaultEventSocket
	}
	return &Listeners{
		server:    srv,
		callPath:  callPath,
		eventPath: eventPath,
		logger:    log.Component("api"),
	}
}

// Start binds both sockets and begins accepting connections. A bind
// failure is returned to the caller and is fatal for the daemon.
func (l *Listeners) Start() error {
	var err error

	if l.callLn, err = bindSocket(l.callPath); err != nil {
		return fmt.Errorf("bind call socket: %w", err)
	}
	if l.eventLn, err = bindSocket(l.eventPath); err != nil {
		_ = l.callLn.Close()
		return fmt.Errorf("bind event socket: %w", err)
	}

	l.logger.Info().
		Str("call_socket", l.callPath).
		Str("event_socket", l.eventPath).
		Msg("Listening")

	metrics.RegisterComponent("call_socket", true, "listening")
	metrics.RegisterComponent("event_socket", true, "listening")

	go l.acceptLoop(l.callLn, "call", l.handleCallConn)
	go l.acceptLoop(l.eventLn, "event", l.handleEventConn)

	return nil
}

// Stop closes both listeners. Established connections run until their
// peers disconnect.
func (l *Listeners) Stop() {
	if l.callLn != nil {
		_ = l.callLn.Close()
	}
	if l.eventLn != nil {
		_ = l.eventLn.Close()
	}
}

// bindSocket removes any stale socket file before binding
func bindSocket(path string) (net.Listener, error) {
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

func (l *Listeners) acceptLoop(ln net.Listener, socket string, handle func(net.Conn)) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Error().Err(err).Str("socket", socket).Msg("Accept failed")
			continue
		}

		metrics.ConnectionsActive.WithLabelValues(socket).Inc()
		go func(conn net.Conn) {
			defer metrics.ConnectionsActive.WithLabelValues(socket).Dec()
			handle(conn)
		}(conn)
	}
}

// handleCallConn reads framed call requests until the peer disconnects.
// Request failures are logged and the connection keeps going.
func (l *Listeners) handleCallConn(conn net.Conn) {
	defer conn.Close()

	reader := wire.NewReader(conn)
	for {
		request, err := reader.ReadMessage()
		if err != nil {
			return
		}

		l.logger.Info().Str("request", request).Msg("Call request")

		if err := l.server.DispatchCall(request); err != nil {
			metrics.CallsTotal.WithLabelValues("failed").Inc()
			l.logger.Warn().Err(err).Str("request", request).Msg("Call failed")
			continue
		}
		metrics.CallsTotal.WithLabelValues("ok").Inc()
	}
}

// handleEventConn owns one subscriber connection: a writer goroutine
// drains the connection's sink while the reader registers subscription
// requests. The sink closes when the peer goes away, which in turn lets
// the broker prune it.
func (l *Listeners) handleEventConn(conn net.Conn) {
	sink := broker.NewSink()
	logger := log.ForConnection("event", sink.ID())

	go func() {
		writer := wire.NewWriter(conn)
		for {
			select {
			case message := <-sink.Messages():
				if err := writer.WriteMessage(message); err != nil {
					logger.Debug().Err(err).Msg("Event write failed, dropping subscriber")
					sink.Close()
					return
				}
			case <-sink.Done():
				return
			}
		}
	}()

	defer func() {
		sink.Close()
		_ = conn.Close()
	}()

	reader := wire.NewReader(conn)
	for {
		request, err := reader.ReadMessage()
		if err != nil {
			return
		}

		logger.Info().Str("request", request).Msg("Subscription request")

		if err := l.server.RegisterSubscription(request, sink); err != nil {
			logger.Warn().Err(err).Str("request", request).Msg("Subscription failed")
		}
	}
}
