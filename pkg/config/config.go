package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all rsbar daemon configuration. Values come from the
// defaults, then the YAML config file, then RSBAR_* environment
// variables, each layer overriding the previous one.
type Config struct {
	// CallSocket is the RPC endpoint path
	CallSocket string `yaml:"call_socket" env:"RSBAR_CALL_SOCKET"`

	// EventSocket is the subscription endpoint path
	EventSocket string `yaml:"event_socket" env:"RSBAR_EVENT_SOCKET"`

	// PollInterval is the update cadence for polled contexts
	PollInterval time.Duration `yaml:"poll_interval" env:"RSBAR_POLL_INTERVAL"`

	// MetricsAddr enables the metrics HTTP server when non-empty
	MetricsAddr string `yaml:"metrics_addr" env:"RSBAR_METRICS_ADDR"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" env:"RSBAR_LOG_LEVEL"`

	// LogJSON switches log output from console to JSON format
	LogJSON bool `yaml:"log_json" env:"RSBAR_LOG_JSON"`

	// MixerCommand overrides the audio mixer control tool
	MixerCommand string `yaml:"mixer_command" env:"RSBAR_MIXER_COMMAND"`

	// BacklightCommand overrides the backlight control tool
	BacklightCommand string `yaml:"backlight_command" env:"RSBAR_BACKLIGHT_COMMAND"`

	// PowerSupplyDir overrides the sysfs power supply location
	PowerSupplyDir string `yaml:"power_supply_dir" env:"RSBAR_POWER_SUPPLY_DIR"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		CallSocket:   "/tmp/rsbar_call.sock",
		EventSocket:  "/tmp/rsbar_event.sock",
		PollInterval: time.Second,
		LogLevel:     "info",
	}
}

// SearchPaths returns the config file search order
func SearchPaths() []string {
	paths := []string{"rsbar.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rsbar", "config.yaml"))
	}

	paths = append(paths, "/etc/rsbar/config.yaml")
	return paths
}

// Load builds the effective configuration. An explicit path must exist;
// with an empty path the search paths are tried and a missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file not found: %s", path)
	}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment overrides: %w", err)
	}

	return cfg, nil
}
