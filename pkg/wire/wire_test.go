package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteMessage("volume/setVolume/42"))
	assert.Equal(t, "volume/setVolume/42\x00", buf.String())
}

func TestWriteMessage_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteMessage(""))
	assert.Equal(t, "\x00", buf.String())
}

func TestWriteMessage_EmbeddedNUL(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	err := w.WriteMessage("bad\x00payload")
	assert.True(t, errors.Is(err, ErrEmbeddedNUL))
	assert.Zero(t, buf.Len())
}

func TestReadMessage(t *testing.T) {
	r := NewReader(strings.NewReader("battery/capacity/87\x00"))

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "battery/capacity/87", msg)
}

func TestReadMessage_MultipleFramesInOneRead(t *testing.T) {
	// Two concatenated frames delivered in a single write must both decode.
	r := NewReader(strings.NewReader("volume/setVolume/10\x00volume/setVolume/20\x00"))

	first, err := r.ReadMessage()
	require.NoError(t, err)
	second, err := r.ReadMessage()
	require.NoError(t, err)

	assert.Equal(t, "volume/setVolume/10", first)
	assert.Equal(t, "volume/setVolume/20", second)

	_, err = r.ReadMessage()
	assert.Equal(t, io.EOF, err)
}

func TestReadMessage_EmptyPayload(t *testing.T) {
	r := NewReader(strings.NewReader("\x00"))

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "", msg)
}

func TestReadMessage_CleanEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))

	_, err := r.ReadMessage()
	assert.Equal(t, io.EOF, err)
}

func TestReadMessage_TruncatedFrame(t *testing.T) {
	r := NewReader(strings.NewReader("volume/volume"))

	_, err := r.ReadMessage()
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	payloads := []string{"a/b/c/d", "", "time/time/12\n30", "battery/capacity"}
	for _, p := range payloads {
		require.NoError(t, w.WriteMessage(p))
	}

	r := NewReader(&buf)
	for _, want := range payloads {
		got, err := r.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
