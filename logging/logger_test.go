package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warn"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"), "unknown level defaults to info")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestCrewLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf, Component: "bus"})

	logger.Info("message published", "target", "vitals_agent")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "message published", entry["msg"])
	assert.Equal(t, "bus", entry["component"])
	assert.Equal(t, "vitals_agent", entry["target"])
}

func TestCrewLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "text", Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestCrewLoggerContextualClones(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	scoped := logger.WithComponent("orchestrator").WithAgent("vitals_agent")
	scoped.Info("delegated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orchestrator", entry["component"])
	assert.Equal(t, "vitals_agent", entry["agent_id"])

	// the parent is untouched
	buf.Reset()
	logger.Info("plain")
	var plain map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &plain))
	assert.NotContains(t, plain, "component")
}

func TestLogAgentCall(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	logger.LogAgentCall("vitals_agent", "get_current", 0, nil)
	assert.Contains(t, buf.String(), "Agent call completed")

	buf.Reset()
	logger.LogAgentCall("vitals_agent", "get_current", 0, assert.AnError)
	assert.Contains(t, buf.String(), "Agent call failed")
}

func TestNoOpLoggerSilent(t *testing.T) {
	// must not panic; output is discarded
	l := NoOpLogger{}
	l.Debug("a")
	l.Info("b", "k", "v")
	l.Warn("c")
	l.Error("d")
}

func TestSlogAdapter(t *testing.T) {
	logger := NewDefaultSlogLogger()
	require.NotNil(t, logger)
	adapter, ok := logger.(*SlogAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.Logger)
}

func TestLogDelivery(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf})

	logger.LogDelivery("conn-1", true)
	logger.LogDelivery("conn-2", false)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Message delivered")
	assert.Contains(t, lines[1], "pruning connection")
}
