package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsbar/rsbar/pkg/broker"
)

// fakeContext records lifecycle invocations and publishes a single topic
type fakeContext struct {
	name    string
	events  *broker.EventHandler
	value   string
	initErr error
	updErr  error
	initLog *[]string

	initCalls   int
	updateCalls int
	forceCalls  int
	calls       []string
}

func (f *fakeContext) Init(events *broker.EventHandler) error {
	f.initCalls++
	if f.initLog != nil {
		*f.initLog = append(*f.initLog, f.name)
	}
	if f.initErr != nil {
		return f.initErr
	}
	f.events = events
	return nil
}

func (f *fakeContext) Update() error {
	f.updateCalls++
	if f.updErr != nil {
		return f.updErr
	}
	return f.ForceEvents()
}

func (f *fakeContext) Call(procedure string, arg string) error {
	f.calls = append(f.calls, procedure+"("+arg+")")
	if procedure == "set" {
		f.value = arg
		return f.ForceEvents()
	}
	return errors.New("unknown procedure: " + procedure)
}

func (f *fakeContext) ForceEvents() error {
	f.forceCalls++
	if f.events != nil {
		f.events.TriggerEvent(f.name+"/value", f.value)
	}
	return nil
}

func drain(s *broker.Sink) []string {
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

func TestInit_RegistrationOrder(t *testing.T) {
	s := New()
	var order []string
	first := &fakeContext{name: "first", initLog: &order}
	second := &fakeContext{name: "second", initLog: &order}

	s.Register("first", first)
	s.Register("second", second)

	require.NoError(t, s.Init())
	assert.Equal(t, 1, first.initCalls)
	assert.Equal(t, 1, second.initCalls)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestInit_PropagatesFirstFailure(t *testing.T) {
	s := New()
	bad := &fakeContext{name: "bad", initErr: errors.New("no battery directory")}
	after := &fakeContext{name: "after"}

	s.Register("bad", bad)
	s.Register("after", after)

	err := s.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, 0, after.initCalls)
}

func TestUpdate_AbortsCycleOnFailure(t *testing.T) {
	s := New()
	bad := &fakeContext{name: "bad", updErr: errors.New("read failed")}
	after := &fakeContext{name: "after"}

	s.Register("bad", bad)
	s.Register("after", after)
	require.NoError(t, s.Init())

	err := s.Update()
	require.Error(t, err)
	assert.Equal(t, 0, after.updateCalls)
}

func TestDispatchCall(t *testing.T) {
	s := New()
	vol := &fakeContext{name: "volume"}
	s.Register("volume", vol)
	require.NoError(t, s.Init())

	require.NoError(t, s.DispatchCall("volume/set/42"))
	assert.Equal(t, []string{"set(42)"}, vol.calls)
	assert.Equal(t, "42", vol.value)
}

func TestDispatchCall_TrimsWhitespace(t *testing.T) {
	s := New()
	vol := &fakeContext{name: "volume"}
	s.Register("volume", vol)
	require.NoError(t, s.Init())

	require.NoError(t, s.DispatchCall("  volume/set/30\n"))
	assert.Equal(t, "30", vol.value)
}

func TestDispatchCall_EmptyArg(t *testing.T) {
	s := New()
	vol := &fakeContext{name: "volume"}
	s.Register("volume", vol)
	require.NoError(t, s.Init())

	require.NoError(t, s.DispatchCall("volume/set/"))
	assert.Equal(t, []string{"set()"}, vol.calls)
}

func TestDispatchCall_Malformed(t *testing.T) {
	s := New()
	s.Register("volume", &fakeContext{name: "volume"})

	for _, req := range []string{"volume", "volume/set", "volume/set/1/2"} {
		err := s.DispatchCall(req)
		assert.True(t, errors.Is(err, ErrMalformedRequest), "request %q", req)
	}
}

func TestDispatchCall_UnknownContext(t *testing.T) {
	s := New()

	err := s.DispatchCall("nope/nope/nope")
	assert.True(t, errors.Is(err, ErrUnknownContext))
}

func TestDispatchCall_ContextFailureSurfaces(t *testing.T) {
	s := New()
	vol := &fakeContext{name: "volume"}
	s.Register("volume", vol)
	require.NoError(t, s.Init())

	err := s.DispatchCall("volume/bogus/1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedRequest))
	assert.False(t, errors.Is(err, ErrUnknownContext))
}

func TestRegisterSubscription_SnapshotDelivered(t *testing.T) {
	s := New()
	bat := &fakeContext{name: "battery", value: "87"}
	s.Register("battery", bat)
	require.NoError(t, s.Init())

	sink := broker.NewSink()
	require.NoError(t, s.RegisterSubscription("battery/value", sink))

	msgs := drain(sink)
	require.Len(t, msgs, 1)
	assert.Equal(t, "battery/value/87", msgs[0])
}

func TestRegisterSubscription_DuplicateSnapshotToExistingSubscribers(t *testing.T) {
	s := New()
	bat := &fakeContext{name: "battery", value: "87"}
	s.Register("battery", bat)
	require.NoError(t, s.Init())

	old := broker.NewSink()
	require.NoError(t, s.RegisterSubscription("battery/value", old))
	drain(old)

	// A second subscriber's snapshot also reaches the first one
	fresh := broker.NewSink()
	require.NoError(t, s.RegisterSubscription("battery/value", fresh))

	assert.Len(t, drain(old), 1)
	assert.Len(t, drain(fresh), 1)
}

func TestRegisterSubscription_Malformed(t *testing.T) {
	s := New()
	s.Register("volume", &fakeContext{name: "volume"})

	sink := broker.NewSink()
	for _, req := range []string{"volume", "volume/volume/extra"} {
		err := s.RegisterSubscription(req, sink)
		assert.True(t, errors.Is(err, ErrMalformedRequest), "request %q", req)
	}
}

func TestRegisterSubscription_UnknownContext(t *testing.T) {
	s := New()

	err := s.RegisterSubscription("ghost/value", broker.NewSink())
	assert.True(t, errors.Is(err, ErrUnknownContext))
}

func TestRegister_DuplicateOverwrites(t *testing.T) {
	s := New()
	first := &fakeContext{name: "volume"}
	second := &fakeContext{name: "volume"}

	s.Register("volume", first)
	s.Register("volume", second)
	require.NoError(t, s.Init())

	assert.Equal(t, 0, first.initCalls)
	assert.Equal(t, 1, second.initCalls)
}
