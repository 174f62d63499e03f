package emit

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogEmitter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e := NewLogEmitter(logger, slog.LevelInfo)

	e.Emit(Event{
		RequestID: "r1",
		Step:      2,
		FlowName:  "AssignVnfBB",
		Msg:       MsgStepResolved,
		Meta:      map[string]any{"steps": 4},
	})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != MsgStepResolved {
		t.Errorf("msg = %v, want %q", rec["msg"], MsgStepResolved)
	}
	if rec["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", rec["level"])
	}
	if rec["request_id"] != "r1" || rec["flow_name"] != "AssignVnfBB" {
		t.Errorf("unexpected attributes: %v", rec)
	}
	if rec["step"] != float64(2) || rec["steps"] != float64(4) {
		t.Errorf("unexpected numeric attributes: %v", rec)
	}
}

func TestLogEmitter_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e := NewLogEmitter(logger, slog.LevelDebug)

	e.Emit(Event{RequestID: "r1", Step: -1, Msg: MsgPathNotFound, Meta: map[string]any{"error": "not found"}})

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("expected error level, got %q", out)
	}
	if strings.Contains(out, "flow_name") {
		t.Errorf("path-level event should not carry flow_name: %q", out)
	}
}

func TestLogEmitter_BelowLevelDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	NewLogEmitter(logger, slog.LevelInfo).Emit(Event{RequestID: "r1", Msg: MsgPathSaved})

	if buf.Len() != 0 {
		t.Errorf("expected no output below handler level, got %q", buf.String())
	}
}
