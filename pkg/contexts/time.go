package contexts

import (
	"fmt"
	"time"

	"github.com/rsbar/rsbar/pkg/broker"
)

// timeFormat renders hour and minute on separate lines for the bar widget
const timeFormat = "15\n04"

// TimeContext publishes the wall-clock time on every update tick.
//
// Topics: time/time
type TimeContext struct {
	now    func() time.Time
	events *broker.EventHandler
}

// NewTimeContext creates a time context backed by the system clock
func NewTimeContext() *TimeContext {
	return &TimeContext{now: time.Now}
}

// Init stores the event handler and emits the initial snapshot
func (c *TimeContext) Init(events *broker.EventHandler) error {
	c.events = events
	return c.Update()
}

// Update reads the clock and re-emits
func (c *TimeContext) Update() error {
	return c.ForceEvents()
}

// Call always fails; the time context exposes no procedures
func (c *TimeContext) Call(procedure string, arg string) error {
	return fmt.Errorf("%w: time context accepts no calls", ErrUnknownProcedure)
}

// ForceEvents emits the current time
func (c *TimeContext) ForceEvents() error {
	c.events.TriggerEvent(TimeName+"/time", c.now().Format(timeFormat))
	return nil
}
