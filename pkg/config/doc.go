/*
Package config handles rsbar daemon configuration loading.

Configuration is layered: built-in defaults, then an optional YAML file,
then RSBAR_* environment variables, each layer overriding the previous
one. Everything has a working default; a config file is only needed to
move the sockets, change the poll cadence, swap a tool, or expose
metrics.

# Architecture

	defaults (Default)
	   │
	   ▼  overridden by
	YAML file (explicit --config, else first hit of:)
	   ./rsbar.yaml
	   ~/.config/rsbar/config.yaml
	   /etc/rsbar/config.yaml
	   │
	   ▼  overridden by
	RSBAR_* environment variables
	   │
	   ▼
	effective Config

# Core Components

Config:
  - Socket paths, poll interval, metrics address, log level/format
  - Tool overrides: mixer command, backlight command, power supply dir
  - One struct, YAML tags for the file, env tags for the overrides

Load:
  - An explicit path must exist; a missing search-path file is fine
  - YAML parse errors and bad env values fail loudly with the source
    named in the error

SearchPaths:
  - Working directory first for development, then the user config dir,
    then the system location

# Usage

	cfg, err := config.Load("")   // search the default locations
	cfg, err = config.Load(path)  // or: --config was given

	listeners := api.NewListeners(srv, cfg.CallSocket, cfg.EventSocket)
	sched := scheduler.New(srv, cfg.PollInterval)

Example rsbar.yaml:

	poll_interval: 2s
	log_level: debug
	metrics_addr: "127.0.0.1:9090"
	backlight_command: light

Environment overrides use the same keys with the RSBAR_ prefix:

	RSBAR_LOG_LEVEL=error RSBAR_POLL_INTERVAL=500ms rsbard daemon

# Integration Points

  - cmd/rsbard: loads once per invocation and threads values through
    the constructors
  - pkg/contexts: mixer/backlight/power-supply overrides
  - pkg/api, pkg/scheduler, pkg/metrics, pkg/log: the rest of the keys

Note the Hyprland socket variables (XDG_RUNTIME_DIR,
HYPRLAND_INSTANCE_SIGNATURE) are deliberately not in this file: they
describe the session the daemon runs in, not the daemon, and are read
by pkg/contexts directly.

# See Also

  - cmd/rsbard - flag/file/env precedence for logging
*/
package config
