package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_UnknownLevel(t *testing.T) {
	err := Setup("loud", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("debug", true, &buf))

	Logger.Info().Str("topic", "volume/volume").Msg("event delivered")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "event delivered", line["message"])
	assert.Equal(t, "volume/volume", line["topic"])
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("warn", true, &buf))

	Logger.Info().Msg("too quiet to pass")
	assert.Zero(t, buf.Len())

	Logger.Warn().Msg("loud enough")
	assert.NotZero(t, buf.Len())
}

func TestForConnection_CarriesCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("info", true, &buf))

	logger := ForConnection("event", "sink-1234")
	logger.Info().Msg("subscription added")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "event", line["socket"])
	assert.Equal(t, "sink-1234", line["sink_id"])
}
