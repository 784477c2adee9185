package contexts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsbar/rsbar/pkg/broker"
)

func writeBatteryDir(t *testing.T, capacity string, status string) string {
	t.Helper()

	dir := t.TempDir()
	batDir := filepath.Join(dir, "BAT0")
	require.NoError(t, os.Mkdir(batDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(batDir, "capacity"), []byte(capacity), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(batDir, "status"), []byte(status), 0o644))
	return dir
}

func TestBatteryInit_PublishesSnapshot(t *testing.T) {
	dir := writeBatteryDir(t, "87\n", "Discharging\n")
	events := broker.NewEventHandler()
	sink := subscribe(t, events, "battery/capacity", "battery/status")

	c := NewBatteryContext(dir)
	require.NoError(t, c.Init(events))

	msgs := drainSink(sink)
	require.Len(t, msgs, 2)
	assert.Equal(t, "battery/capacity/87", msgs[0])
	assert.Equal(t, "battery/status/Discharging", msgs[1])
}

func TestBatteryInit_NoBatteryDirIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "AC"), 0o755))

	c := NewBatteryContext(dir)
	err := c.Init(broker.NewEventHandler())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no battery directory")
}

func TestBatteryInit_IgnoresNonBatteryEntries(t *testing.T) {
	dir := writeBatteryDir(t, "50", "Full")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "AC"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "BATTERY"), 0o755))

	c := NewBatteryContext(dir)
	require.NoError(t, c.Init(broker.NewEventHandler()))
}

func TestBatteryUpdate_RereadsFiles(t *testing.T) {
	dir := writeBatteryDir(t, "87", "Discharging")
	events := broker.NewEventHandler()

	c := NewBatteryContext(dir)
	require.NoError(t, c.Init(events))

	// State changes under the retained file handles
	batDir := filepath.Join(dir, "BAT0")
	require.NoError(t, os.WriteFile(filepath.Join(batDir, "capacity"), []byte("88"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(batDir, "status"), []byte("Charging"), 0o644))

	sink := subscribe(t, events, "battery/capacity", "battery/status")
	require.NoError(t, c.Update())

	msgs := drainSink(sink)
	require.Len(t, msgs, 2)
	assert.Equal(t, "battery/capacity/88", msgs[0])
	assert.Equal(t, "battery/status/Charging", msgs[1])
}

func TestBatteryUpdate_StatusMapping(t *testing.T) {
	tests := []struct {
		sysfs string
		want  string
	}{
		{"Charging", "Charging"},
		{"Discharging", "Discharging"},
		{"Full", "Full"},
		{"Not charging", "NotCharging"},
		{"Unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.sysfs, func(t *testing.T) {
			dir := writeBatteryDir(t, "50", tt.sysfs)
			events := broker.NewEventHandler()
			sink := subscribe(t, events, "battery/status")

			c := NewBatteryContext(dir)
			require.NoError(t, c.Init(events))

			msgs := drainSink(sink)
			require.Len(t, msgs, 1)
			assert.Equal(t, "battery/status/"+tt.want, msgs[0])
		})
	}
}

func TestBatteryUpdate_BadStatus(t *testing.T) {
	dir := writeBatteryDir(t, "50", "Exploding")

	c := NewBatteryContext(dir)
	err := c.Init(broker.NewEventHandler())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status value")
}

func TestBatteryUpdate_BadCapacity(t *testing.T) {
	dir := writeBatteryDir(t, "many", "Full")

	c := NewBatteryContext(dir)
	err := c.Init(broker.NewEventHandler())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad capacity value")
}

func TestBatteryCall_Unsupported(t *testing.T) {
	dir := writeBatteryDir(t, "50", "Full")

	c := NewBatteryContext(dir)
	require.NoError(t, c.Init(broker.NewEventHandler()))

	err := c.Call("drain", "")
	assert.True(t, errors.Is(err, ErrUnknownProcedure))
}
