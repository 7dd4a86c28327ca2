package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	l := NewProductionLoggerTo(&buf, "store", LogLevelDebug, true)
	l.now = fixedClock

	l.Warn("write failed", "key", "trash_alice", "error", errors.New("disk full"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "store", entry["service"])
	assert.Equal(t, "write failed", entry["message"])
	assert.Equal(t, "2024-05-01T12:00:00Z", entry["timestamp"])

	fields := entry["fields"].(map[string]interface{})
	assert.Equal(t, "trash_alice", fields["key"])
	assert.Equal(t, "disk full", fields["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewProductionLoggerTo(&buf, "chat", LogLevelWarn, false)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "WARN [chat] shown")
	assert.Contains(t, lines[1], "ERROR [chat] shown too")
}

func TestHumanReadableOddPairs(t *testing.T) {
	var buf bytes.Buffer
	l := NewProductionLoggerTo(&buf, "http", LogLevelInfo, false)

	l.Info("request", "method", "GET", "dangling")

	assert.Contains(t, buf.String(), "method=GET dangling=<missing>")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LogLevelError, ParseLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerForTestEnvIsSilent(t *testing.T) {
	assert.IsType(t, &NoOpLogger{}, NewLogger("x", "test", "debug"))
	assert.IsType(t, &ProductionLogger{}, NewLogger("x", "development", ""))
}
