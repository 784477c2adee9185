package contexts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/broker"
	"github.com/rsbar/rsbar/pkg/log"
)

// DefaultPowerSupplyDir is where the kernel exposes battery state
const DefaultPowerSupplyDir = "/sys/class/power_supply"

var batteryDirPattern = regexp.MustCompile(`^BAT[0-9]+$`)

// BatteryStatus is the charging state reported on battery/status
type BatteryStatus string

const (
	StatusCharging    BatteryStatus = "Charging"
	StatusDischarging BatteryStatus = "Discharging"
	StatusFull        BatteryStatus = "Full"
	StatusNotCharging BatteryStatus = "NotCharging"
	StatusUnknown     BatteryStatus = "Unknown"
)

// BatteryContext reads battery charge and status from sysfs.
//
// Topics: battery/capacity (integer percent), battery/status. No
// procedures. Init fails when no battery directory exists, which is fatal
// for the daemon when the context is registered.
type BatteryContext struct {
	dir string

	capacityFile *os.File
	statusFile   *os.File

	capacity int
	status   BatteryStatus

	events *broker.EventHandler
	logger zerolog.Logger
}

// NewBatteryContext creates a battery context reading from dir. An empty
// dir selects the standard sysfs location.
func NewBatteryContext(dir string) *BatteryContext {
	if dir == "" {
		dir = DefaultPowerSupplyDir
	}
	return &BatteryContext{
		dir:    dir,
		status: StatusUnknown,
		logger: log.ForContext(BatteryName),
	}
}

// Init locates the battery directory, opens and retains the capacity and
// status files, and emits the initial snapshot
func (c *BatteryContext) Init(events *broker.EventHandler) error {
	c.events = events

	batteryDir, err := c.findBatteryDir()
	if err != nil {
		return err
	}

	c.logger.Info().Str("dir", batteryDir).Msg("Battery directory found")

	if c.capacityFile, err = os.Open(filepath.Join(batteryDir, "capacity")); err != nil {
		return fmt.Errorf("open capacity file: %w", err)
	}
	if c.statusFile, err = os.Open(filepath.Join(batteryDir, "status")); err != nil {
		return fmt.Errorf("open status file: %w", err)
	}

	return c.Update()
}

// Update rewinds and re-reads both files, then re-emits
func (c *BatteryContext) Update() error {
	raw, err := rereadFile(c.capacityFile)
	if err != nil {
		return fmt.Errorf("read capacity: %w", err)
	}

	capacity, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("bad capacity value %q: %w", raw, err)
	}
	c.capacity = capacity

	raw, err = rereadFile(c.statusFile)
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}

	switch raw {
	case "Charging":
		c.status = StatusCharging
	case "Discharging":
		c.status = StatusDischarging
	case "Full":
		c.status = StatusFull
	case "Not charging":
		c.status = StatusNotCharging
	case "Unknown":
		c.status = StatusUnknown
	default:
		return fmt.Errorf("bad status value %q", raw)
	}

	return c.ForceEvents()
}

// Call always fails; the battery context exposes no procedures
func (c *BatteryContext) Call(procedure string, arg string) error {
	return fmt.Errorf("%w: battery context accepts no calls", ErrUnknownProcedure)
}

// ForceEvents emits both topics at their current values
func (c *BatteryContext) ForceEvents() error {
	c.events.TriggerEvent(BatteryName+"/capacity", strconv.Itoa(c.capacity))
	c.events.TriggerEvent(BatteryName+"/status", string(c.status))
	return nil
}

func (c *BatteryContext) findBatteryDir() (string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return "", fmt.Errorf("scan power supply dir: %w", err)
	}

	for _, entry := range entries {
		if batteryDirPattern.MatchString(entry.Name()) {
			return filepath.Join(c.dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("no battery directory under %s", c.dir)
}

// rereadFile reads the whole file from the start, leaving the offset ready
// for the next read. Sysfs attribute files report fresh state on each read.
func rereadFile(f *os.File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(content)), nil
}
