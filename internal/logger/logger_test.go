package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewWithWriter_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	var buf bytes.Buffer

	l := NewWithWriter(&buf, "warn", "json")
	l.Info().Msg("dropped")
	l.Warn().Str("delivery_id", "d-1").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "d-1", entry["delivery_id"])
	assert.Equal(t, "clinic-webhooks", entry["service"])
}

func TestNewWithWriter_Text(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	var buf bytes.Buffer

	l := NewWithWriter(&buf, "info", "text")
	l.Info().Msg("listening")

	assert.Contains(t, buf.String(), "listening")
	assert.NotContains(t, buf.String(), `"message"`)
}
