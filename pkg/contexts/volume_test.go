package contexts

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsbar/rsbar/pkg/broker"
)

// fakeRunner scripts command output and records invocations
type fakeRunner struct {
	outputs map[string][]byte
	outErr  error
	runErr  error
	ran     []string
}

func (r *fakeRunner) Output(name string, args ...string) ([]byte, error) {
	r.ran = append(r.ran, name+" "+strings.Join(args, " "))
	if r.outErr != nil {
		return nil, r.outErr
	}
	return r.outputs[args[0]], nil
}

func (r *fakeRunner) Run(name string, args ...string) error {
	r.ran = append(r.ran, name+" "+strings.Join(args, " "))
	return r.runErr
}

func subscribe(t *testing.T, events *broker.EventHandler, topics ...string) *broker.Sink {
	t.Helper()
	sink := broker.NewSink()
	for _, topic := range topics {
		events.AddEvent(topic, sink)
	}
	return sink
}

func drainSink(s *broker.Sink) []string {
	var out []string
	for {
		select {
		case msg := <-s.Messages():
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestVolumeUpdate_ParsesFraction(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"get-volume": []byte("Volume: 0.52\n")}}
	events := broker.NewEventHandler()
	sink := subscribe(t, events, "volume/volume", "volume/isMuted")

	c := NewVolumeContext(runner, "")
	require.NoError(t, c.Init(events))

	msgs := drainSink(sink)
	require.Len(t, msgs, 2)
	assert.Equal(t, "volume/volume/52", msgs[0])
	assert.Equal(t, "volume/isMuted/false", msgs[1])
}

func TestVolumeUpdate_UnparseableMeansMuted(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"get-volume": []byte("Volume: 0.52 [MUTED]\n")}}
	events := broker.NewEventHandler()
	sink := subscribe(t, events, "volume/isMuted")

	c := NewVolumeContext(runner, "")
	require.NoError(t, c.Init(events))

	msgs := drainSink(sink)
	require.Len(t, msgs, 1)
	assert.Equal(t, "volume/isMuted/true", msgs[0])
}

func TestVolumeUpdate_CommandFailure(t *testing.T) {
	runner := &fakeRunner{outErr: errors.New("wpctl: not found")}

	c := NewVolumeContext(runner, "")
	err := c.Init(broker.NewEventHandler())
	require.Error(t, err)
}

func TestSetVolume(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"get-volume": []byte("Volume: 0.10\n")}}
	events := broker.NewEventHandler()

	c := NewVolumeContext(runner, "")
	require.NoError(t, c.Init(events))

	sink := subscribe(t, events, "volume/volume")
	require.NoError(t, c.Call("setVolume", "30"))

	assert.Contains(t, runner.ran, "wpctl set-volume @DEFAULT_AUDIO_SINK@ 30%")

	msgs := drainSink(sink)
	require.Len(t, msgs, 1)
	assert.Equal(t, "volume/volume/30", msgs[0])
}

func TestSetVolume_Boundaries(t *testing.T) {
	tests := []struct {
		arg     string
		wantErr bool
	}{
		{"0", false},
		{"100", false},
		{"-1", true},
		{"100.5", true},
		{"loud", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("arg=%q", tt.arg), func(t *testing.T) {
			runner := &fakeRunner{outputs: map[string][]byte{"get-volume": []byte("Volume: 0.50\n")}}
			c := NewVolumeContext(runner, "")
			require.NoError(t, c.Init(broker.NewEventHandler()))

			err := c.Call("setVolume", tt.arg)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrBadArgument), "arg %q", tt.arg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToggleMute_RoundTrip(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"get-volume": []byte("Volume: 0.50\n")}}
	events := broker.NewEventHandler()

	c := NewVolumeContext(runner, "")
	require.NoError(t, c.Init(events))

	sink := subscribe(t, events, "volume/isMuted")

	require.NoError(t, c.Call("toggleMute", ""))
	require.NoError(t, c.Call("toggleMute", ""))

	msgs := drainSink(sink)
	require.Len(t, msgs, 2)
	assert.Equal(t, "volume/isMuted/true", msgs[0])
	assert.Equal(t, "volume/isMuted/false", msgs[1])
}

func TestVolumeCall_UnknownProcedure(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"get-volume": []byte("Volume: 0.50\n")}}
	c := NewVolumeContext(runner, "")
	require.NoError(t, c.Init(broker.NewEventHandler()))

	err := c.Call("setGain", "1")
	assert.True(t, errors.Is(err, ErrUnknownProcedure))
}
