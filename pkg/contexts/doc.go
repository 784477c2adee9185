/*
Package contexts implements the concrete state producers registered with
the rsbar server.

Each context translates one external state source into event topics and,
where it makes sense, callable procedures. Together they cover the
interaction patterns the framework has to support: shelling out to tools,
re-reading retained file handles, following an external event socket, and
plain clock reads.

# Architecture

	┌──────────────────── CONTEXTS ────────────────────────────┐
	│                                                           │
	│  volume      ── exec mixer tool ──────┐                   │
	│  brightness  ── exec backlight tool ──┤                   │
	│  battery     ── sysfs file handles ───┼──▶ EventHandler   │
	│  hyprland    ── compositor sockets ───┤    .TriggerEvent  │
	│  time        ── system clock ─────────┘                   │
	│                                                           │
	│  polled (volume, brightness, battery, time):              │
	│    scheduler tick → Update() → read source → emit         │
	│                                                           │
	│  event-driven (hyprland):                                 │
	│    listener goroutine → compositor event → re-query       │
	│    → emit; Update() is a no-op                            │
	└──────────────────────────────────────────────────────────┘

# Topics and Procedures

	context     topics                            procedures
	─────────   ───────────────────────────────   ─────────────
	volume      volume/volume (0-100)             setVolume
	            volume/isMuted (true/false)       toggleMute
	brightness  brightness/brightness (percent)   setBrightness
	battery     battery/capacity (percent)        -
	            battery/status (Charging|...)
	hyprland    hyprland/workspace (integer)      setWorkspace
	time        time/time ("HH\nMM")              -

Every topic is prefixed with the context's registration name; the
constants VolumeName, BrightnessName, BatteryName, WorkspaceName and
TimeName are that single source of truth.

# Core Components

Runner:
  - Interface over external command execution (Output/Run)
  - Production code uses the exec-backed NewRunner
  - Tests script outputs and record invocations with a fake

VolumeContext:
  - Parses "Volume: <fraction>" from the mixer, scales to percent
  - A fraction that does not parse means the sink is muted
  - setVolume validates a decimal in [0,100] before touching the tool

BrightnessContext:
  - Parses field 3 ("<n>%") of the backlight tool's CSV output
  - An unparseable percent falls back to 0 rather than failing the cycle
  - setBrightness validates an integer in [0,100]

BatteryContext:
  - Init scans the power supply directory for ^BAT[0-9]+$ and keeps the
    capacity and status files open; no battery is a fatal init error
  - Update rewinds and re-reads both handles; sysfs serves fresh state
    on every read of a retained fd
  - "Not charging" from the kernel maps to the NotCharging status value

WorkspaceContext:
  - Socket paths resolved eagerly from XDG_RUNTIME_DIR and
    HYPRLAND_INSTANCE_SIGNATURE at construction
  - A listener goroutine cycles Disconnected → Connecting → Acquiring →
    Streaming, reconnecting with a 1 s interval on any failure
  - Lines prefixed "workspace" or "focusedmon" trigger a re-query of the
    active workspace over the control socket
  - setWorkspace sends "dispatch workspace <n>" on the control socket

TimeContext:
  - Formats the injected clock as hour and minute on separate lines
  - Update cannot fail (the same holds for the no-op hyprland Update)

# Usage

	runner := contexts.NewRunner()

	srv.Register(contexts.VolumeName, contexts.NewVolumeContext(runner, ""))
	srv.Register(contexts.BrightnessName, contexts.NewBrightnessContext(runner, ""))

	hyprCfg, err := contexts.HyprlandConfigFromEnv()
	if err != nil {
		// not running under Hyprland; fatal for the daemon
	}
	workspace := contexts.NewWorkspaceContext(hyprCfg)
	srv.Register(contexts.WorkspaceName, workspace)
	defer workspace.Close()

	srv.Register(contexts.TimeName, contexts.NewTimeContext())
	srv.Register(contexts.BatteryName, contexts.NewBatteryContext(""))

# Testing

External collaborators are injected through the constructors:

  - volume/brightness take a Runner; tests script tool output
  - battery takes the sysfs directory; tests point it at a temp dir
  - hyprland takes resolved socket paths; tests serve both sockets from
    a fake compositor
  - time exposes its clock function within the package

# Integration Points

  - pkg/server: all five types satisfy server.Context
  - pkg/broker: events flow through the handler received at Init
  - pkg/config: tool names and the sysfs directory are configurable
  - cmd/rsbard: registration order (volume, brightness, hyprland, time,
    battery) and lifecycle wiring

# Error Handling

  - ErrUnknownProcedure / ErrBadArgument classify call failures so the
    router's log lines distinguish client mistakes from broken tools
  - Tool and file failures wrap the underlying error and surface through
    the update cycle, where the scheduler logs and retries next tick
  - Init errors are fatal: battery's missing directory, and any failure
    of the first read that volume, brightness and battery perform inside
    Init; hyprland's missing environment is fatal at construction time

# Troubleshooting

volume/isMuted stuck at true:
  - The mixer's volume line stopped parsing; run the tool by hand and
    compare its output shape with refresh()

hyprland/workspace silent:
  - Check the listener state transitions at debug level; a missing
    compositor keeps it bouncing between connecting and disconnected
    at the retry interval forever, by design

battery init fails on a desktop:
  - There is no BAT* directory to find; run the daemon without the
    battery context or point power_supply_dir at a fake

# See Also

  - pkg/server - the Context interface these types implement
  - pkg/scheduler - what drives the polled contexts
  - pkg/config - where tool overrides come from
*/
package contexts
