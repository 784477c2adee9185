package contexts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/broker"
	"github.com/rsbar/rsbar/pkg/log"
)

// hyprctl response buffer size, taken from the hyprctl sources
const controlResponseSize = 8192

// defaultRetryInterval paces reconnect and query retries against the
// compositor sockets
const defaultRetryInterval = time.Second

// HyprlandConfig locates the compositor's control and event sockets. Both
// environment variables are set by Hyprland for every session process.
type HyprlandConfig struct {
	RuntimeDir        string `env:"XDG_RUNTIME_DIR,notEmpty"`
	InstanceSignature string `env:"HYPRLAND_INSTANCE_SIGNATURE,notEmpty"`
}

// HyprlandConfigFromEnv resolves the socket locations from the environment
func HyprlandConfigFromEnv() (HyprlandConfig, error) {
	cfg, err := env.ParseAs[HyprlandConfig]()
	if err != nil {
		return HyprlandConfig{}, fmt.Errorf("resolve hyprland sockets: %w", err)
	}
	return cfg, nil
}

// ControlSocket returns the path of the request/response socket
func (c HyprlandConfig) ControlSocket() string {
	return filepath.Join(c.RuntimeDir, "hypr", c.InstanceSignature, ".socket.sock")
}

// EventSocket returns the path of the event stream socket
func (c HyprlandConfig) EventSocket() string {
	return filepath.Join(c.RuntimeDir, "hypr", c.InstanceSignature, ".socket2.sock")
}

// listenerState tracks where the event listener is in its connection
// lifecycle: Disconnected -> Connecting -> Acquiring -> Streaming, and back
// to Disconnected on any error.
type listenerState int

const (
	stateDisconnected listenerState = iota
	stateConnecting
	stateAcquiring
	stateStreaming
)

func (s listenerState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnecting:
		return "connecting"
	case stateAcquiring:
		return "acquiring"
	case stateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// activeWorkspace is the subset of the compositor's JSON workspace object
// the daemon cares about
type activeWorkspace struct {
	ID int `json:"id"`
}

// WorkspaceContext follows the compositor's focused workspace.
//
// Topics: hyprland/workspace (integer). Procedures: setWorkspace.
//
// Unlike the polled contexts, workspace changes are event-driven: Init
// spawns a listener goroutine that follows the compositor's event socket
// and re-queries the active workspace whenever it announces a workspace or
// monitor-focus change.
type WorkspaceContext struct {
	controlSocket string
	eventSocket   string
	retryInterval time.Duration

	mu        sync.Mutex
	workspace int

	events *broker.EventHandler
	logger zerolog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewWorkspaceContext creates a workspace context for the sockets named by
// cfg
func NewWorkspaceContext(cfg HyprlandConfig) *WorkspaceContext {
	return &WorkspaceContext{
		controlSocket: cfg.ControlSocket(),
		eventSocket:   cfg.EventSocket(),
		retryInterval: defaultRetryInterval,
		logger:        log.ForContext(WorkspaceName),
		stopCh:        make(chan struct{}),
	}
}

// Init stores the event handler and spawns the listener goroutine
func (c *WorkspaceContext) Init(events *broker.EventHandler) error {
	c.events = events
	go c.listen()
	return nil
}

// Update is a no-op; workspace changes arrive through the event socket
func (c *WorkspaceContext) Update() error {
	return nil
}

// Call dispatches a procedure invocation
func (c *WorkspaceContext) Call(procedure string, arg string) error {
	switch procedure {
	case "setWorkspace":
		return c.setWorkspace(arg)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProcedure, procedure)
	}
}

// ForceEvents emits the last known workspace
func (c *WorkspaceContext) ForceEvents() error {
	c.mu.Lock()
	workspace := c.workspace
	c.mu.Unlock()

	c.events.TriggerEvent(WorkspaceName+"/workspace", strconv.Itoa(workspace))
	return nil
}

// Close stops the listener goroutine. Safe to call more than once.
func (c *WorkspaceContext) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// listen runs the event-socket lifecycle until Close
func (c *WorkspaceContext) listen() {
	state := stateDisconnected

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		state = c.transition(state, stateConnecting)
		conn, err := net.Dial("unix", c.eventSocket)
		if err != nil {
			state = c.transition(state, stateDisconnected)
			c.logger.Debug().Err(err).Msg("Event socket unavailable, retrying")
			if !c.sleep() {
				return
			}
			continue
		}

		state = c.transition(state, stateAcquiring)
		if !c.acquireWorkspace() {
			_ = conn.Close()
			return
		}

		state = c.transition(state, stateStreaming)
		c.stream(conn)
		_ = conn.Close()

		state = c.transition(state, stateDisconnected)
		if !c.sleep() {
			return
		}
	}
}

// acquireWorkspace performs the initial active-workspace query, retrying
// until it succeeds or the context is closed
func (c *WorkspaceContext) acquireWorkspace() bool {
	for {
		workspace, err := c.queryActiveWorkspace()
		if err == nil {
			c.publish(workspace)
			return true
		}

		c.logger.Debug().Err(err).Msg("Active workspace query failed, retrying")
		if !c.sleep() {
			return false
		}
	}
}

// stream reads compositor events line by line. Any workspace or
// monitor-focus change triggers a re-query and an event.
func (c *WorkspaceContext) stream(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-c.stopCh:
			return
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "workspace") && !strings.HasPrefix(line, "focusedmon") {
			continue
		}

		workspace, err := c.queryActiveWorkspace()
		if err != nil {
			c.logger.Warn().Err(err).Msg("Active workspace query failed")
			continue
		}
		c.publish(workspace)
	}
}

func (c *WorkspaceContext) setWorkspace(arg string) error {
	workspace, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("%w: %q is not a workspace number", ErrBadArgument, arg)
	}

	if _, err := c.control(fmt.Sprintf("dispatch workspace %d", workspace)); err != nil {
		return fmt.Errorf("dispatch workspace: %w", err)
	}

	c.mu.Lock()
	c.workspace = workspace
	c.mu.Unlock()

	return c.ForceEvents()
}

func (c *WorkspaceContext) queryActiveWorkspace() (int, error) {
	response, err := c.control("j/activeworkspace")
	if err != nil {
		return 0, err
	}

	var workspace activeWorkspace
	if err := json.Unmarshal(response, &workspace); err != nil {
		return 0, fmt.Errorf("decode workspace response: %w", err)
	}

	return workspace.ID, nil
}

// control sends one request on the control socket and returns the response
func (c *WorkspaceContext) control(request string) ([]byte, error) {
	conn, err := net.Dial("unix", c.controlSocket)
	if err != nil {
		return nil, fmt.Errorf("connect control socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(request)); err != nil {
		return nil, fmt.Errorf("write control request: %w", err)
	}

	buf := make([]byte, controlResponseSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read control response: %w", err)
	}

	return buf[:n], nil
}

func (c *WorkspaceContext) publish(workspace int) {
	c.mu.Lock()
	c.workspace = workspace
	c.mu.Unlock()

	c.events.TriggerEvent(WorkspaceName+"/workspace", strconv.Itoa(workspace))
}

func (c *WorkspaceContext) transition(from listenerState, to listenerState) listenerState {
	if from != to {
		c.logger.Debug().
			Stringer("from", from).
			Stringer("to", to).
			Msg("Listener state changed")
	}
	return to
}

// sleep waits one retry interval; it returns false when the context was
// closed while waiting
func (c *WorkspaceContext) sleep() bool {
	select {
	case <-c.stopCh:
		return false
	case <-time.After(c.retryInterval):
		return true
	}
}
