package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("not-a-level"))
}

func TestSetupJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := setup(&buf, "warn", "json")
	logger.Info("dropped")
	logger.Warn("kept", RequestID("req-1"), FlowName("AssignNetworkBB"), Error(errors.New("boom")))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "kept", got["msg"])
	assert.Equal(t, "bbflow", got["service"])
	assert.Equal(t, "req-1", got["request_id"])
	assert.Equal(t, "AssignNetworkBB", got["flow_name"])
	assert.Equal(t, "boom", got["error"])
}

func TestSetupText(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	setup(&buf, "debug", "text")
	slog.Debug("hello", RequestID("req-2"))
	assert.Contains(t, buf.String(), "request_id=req-2")
}

func TestErrorNil(t *testing.T) {
	attr := Error(nil)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "", attr.Value.String())
}
