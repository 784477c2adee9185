package contexts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/broker"
	"github.com/rsbar/rsbar/pkg/log"
)

const (
	// DefaultBacklightCommand is the backlight control tool
	DefaultBacklightCommand = "brightnessctl"

	minBrightness = 0
	maxBrightness = 100
)

// BrightnessContext tracks the screen backlight level.
//
// Topics: brightness/brightness (integer percent).
// Procedures: setBrightness.
type BrightnessContext struct {
	runner  Runner
	command string

	brightness int

	events *broker.EventHandler
	logger zerolog.Logger
}

// NewBrightnessContext creates a brightness context using the given command
// runner and backlight tool name. An empty command selects the default.
func NewBrightnessContext(runner Runner, command string) *BrightnessContext {
	if command == "" {
		command = DefaultBacklightCommand
	}
	return &BrightnessContext{
		runner:  runner,
		command: command,
		logger:  log.ForContext(BrightnessName),
	}
}

// Init stores the event handler and emits the initial snapshot
func (c *BrightnessContext) Init(events *broker.EventHandler) error {
	c.events = events
	return c.Update()
}

// Update refreshes the backlight level and re-emits
func (c *BrightnessContext) Update() error {
	out, err := c.runner.Output(c.command, "-m")
	if err != nil {
		return fmt.Errorf("query backlight: %w", err)
	}

	// Machine-readable output is one CSV line; field 3 is "<n>%"
	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) < 4 {
		return fmt.Errorf("unexpected backlight output %q", string(out))
	}

	if value, err := strconv.Atoi(strings.TrimSuffix(fields[3], "%")); err == nil {
		c.brightness = value
	} else {
		c.brightness = 0
	}

	return c.ForceEvents()
}

// Call dispatches a procedure invocation
func (c *BrightnessContext) Call(procedure string, arg string) error {
	switch procedure {
	case "setBrightness":
		return c.setBrightness(arg)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProcedure, procedure)
	}
}

// ForceEvents emits the current backlight level
func (c *BrightnessContext) ForceEvents() error {
	c.events.TriggerEvent(BrightnessName+"/brightness", strconv.Itoa(c.brightness))
	return nil
}

func (c *BrightnessContext) setBrightness(arg string) error {
	value, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer", ErrBadArgument, arg)
	}
	if value < minBrightness || value > maxBrightness {
		return fmt.Errorf("%w: brightness %d out of range [0, 100]", ErrBadArgument, value)
	}

	if err := c.runner.Run(c.command, "-q", "set", fmt.Sprintf("%d%%", value)); err != nil {
		return fmt.Errorf("set brightness: %w", err)
	}

	c.brightness = value
	c.logger.Debug().Int("brightness", value).Msg("Brightness set")

	return c.ForceEvents()
}
