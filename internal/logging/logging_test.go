package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	componentLogger := Component(logger, "stabilizer")
	componentLogger.Warn().Str("label", "Thumbs Up").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "stabilizer", entry["component"])
	assert.Equal(t, "Thumbs Up", entry["label"])
	assert.Equal(t, "shown", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("", "", &buf)
	require.NoError(t, err)

	logger.Info().Msg("pipeline started")
	assert.Contains(t, buf.String(), "pipeline started")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", FormatJSON, nil)
	assert.Error(t, err)

	_, err = New("info", "xml", nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
