package contexts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/broker"
	"github.com/rsbar/rsbar/pkg/log"
)

const (
	// DefaultMixerCommand is the audio mixer control tool
	DefaultMixerCommand = "wpctl"

	// defaultAudioSink is the mixer's alias for the default output device
	defaultAudioSink = "@DEFAULT_AUDIO_SINK@"

	minVolume = 0.0
	maxVolume = 100.0
)

// VolumeContext tracks the default audio sink's volume and mute state.
//
// Topics: volume/volume (percent, 0-100), volume/isMuted (true/false).
// Procedures: setVolume, toggleMute.
type VolumeContext struct {
	runner  Runner
	command string

	volume float64
	muted  bool

	events *broker.EventHandler
	logger zerolog.Logger
}

// NewVolumeContext creates a volume context using the given command runner
// and mixer tool name. An empty command selects the default mixer.
func NewVolumeContext(runner Runner, command string) *VolumeContext {
	if command == "" {
		command = DefaultMixerCommand
	}
	return &VolumeContext{
		runner:  runner,
		command: command,
		logger:  log.ForContext(VolumeName),
	}
}

// Init stores the event handler and emits the initial snapshot
func (c *VolumeContext) Init(events *broker.EventHandler) error {
	c.events = events
	return c.Update()
}

// Update refreshes volume and mute state from the mixer and re-emits
func (c *VolumeContext) Update() error {
	if err := c.refresh(); err != nil {
		return err
	}
	return c.ForceEvents()
}

// Call dispatches a procedure invocation
func (c *VolumeContext) Call(procedure string, arg string) error {
	switch procedure {
	case "setVolume":
		return c.setVolume(arg)
	case "toggleMute":
		return c.toggleMute()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProcedure, procedure)
	}
}

// ForceEvents emits both topics at their current values
func (c *VolumeContext) ForceEvents() error {
	c.events.TriggerEvent(VolumeName+"/volume", formatVolume(c.volume))
	c.events.TriggerEvent(VolumeName+"/isMuted", strconv.FormatBool(c.muted))
	return nil
}

// refresh queries the mixer. The tool reports "Volume: <fraction>" with a
// trailing newline; a muted sink appends a marker that breaks the parse,
// which is how mute is detected.
func (c *VolumeContext) refresh() error {
	out, err := c.runner.Output(c.command, "get-volume", defaultAudioSink)
	if err != nil {
		return fmt.Errorf("query mixer: %w", err)
	}

	report := strings.TrimSuffix(string(out), "\n")
	_, raw, found := strings.Cut(report, " ")
	if !found {
		return fmt.Errorf("unexpected mixer output %q", report)
	}

	if fraction, err := strconv.ParseFloat(raw, 64); err == nil {
		c.volume = math.Round(fraction*10000) / 100
		c.muted = false
	} else {
		c.muted = true
	}

	return nil
}

func (c *VolumeContext) setVolume(arg string) error {
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrBadArgument, arg)
	}
	if value < minVolume || value > maxVolume {
		return fmt.Errorf("%w: volume %v out of range [0, 100]", ErrBadArgument, value)
	}

	if err := c.runner.Run(c.command, "set-volume", defaultAudioSink, formatVolume(value)+"%"); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}

	c.volume = value
	c.logger.Debug().Float64("volume", value).Msg("Volume set")

	return c.ForceEvents()
}

func (c *VolumeContext) toggleMute() error {
	if err := c.runner.Run(c.command, "set-mute", defaultAudioSink, "toggle"); err != nil {
		return fmt.Errorf("toggle mute: %w", err)
	}

	c.muted = !c.muted
	c.logger.Debug().Bool("muted", c.muted).Msg("Mute toggled")

	return c.ForceEvents()
}

func formatVolume(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
