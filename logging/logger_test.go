package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoggingLevel(t *testing.T) {
	for in, want := range map[string]LoggingLevel{
		"off":     LevelOff,
		"ERROR":   LevelError,
		"warning": LevelWarn,
		" info ":  LevelInfo,
		"Debug":   LevelDebug,
	} {
		got, err := ParseLoggingLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLoggingLevel("verbose")
	assert.Error(t, err)
}

func TestLoggingLevel_Ordering(t *testing.T) {
	assert.True(t, LevelOff < LevelError)
	assert.True(t, LevelError < LevelWarn)
	assert.True(t, LevelWarn < LevelInfo)
	assert.True(t, LevelInfo < LevelDebug)

	assert.True(t, LevelDebug.Enabled(LevelError))
	assert.False(t, LevelWarn.Enabled(LevelInfo))
	assert.False(t, LevelDebug.Enabled(LevelOff))
}

func TestStructuredLogger_JSONWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf}).
		WithComponent("relay").
		WithTopic("t1").
		WithContext("peer", "wallet")

	l.Debug("hidden")
	l.Info("connected", "attempt", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "connected", entry["msg"])
	assert.Equal(t, "relay", entry["component"])
	assert.Equal(t, "t1", entry["topic"])
	assert.Equal(t, "wallet", entry["peer"])
	assert.Equal(t, float64(2), entry["attempt"])
}

func TestStructuredLogger_OffIsSilent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LevelOff, Format: "text", Output: &buf})

	l.Error("nothing")

	assert.Empty(t, buf.String())
}
