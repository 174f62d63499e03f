package emit

import (
	"context"
	"log/slog"

	"github.com/dshills/bbflow/internal/logging"
)

// LogEmitter writes events as structured slog records.
//
// Events whose Meta carries an "error" key are logged at error level, all
// others at the configured level.
//
// Example output with a JSON handler:
//
//	{"level":"INFO","msg":"path_loaded","request_id":"r-1","step":-1,"steps":4}
type LogEmitter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogEmitter creates a LogEmitter. A nil logger uses slog.Default().
func NewLogEmitter(logger *slog.Logger, level slog.Level) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger, level: level}
}

// Emit writes event as one log record.
func (l *LogEmitter) Emit(event Event) {
	level := l.level
	if _, ok := event.Meta["error"]; ok {
		level = slog.LevelError
	}

	attrs := make([]slog.Attr, 0, 3+len(event.Meta))
	attrs = append(attrs,
		logging.RequestID(event.RequestID),
		slog.Int("step", event.Step),
	)
	if event.FlowName != "" {
		attrs = append(attrs, logging.FlowName(event.FlowName))
	}
	for k, v := range event.Meta {
		attrs = append(attrs, slog.Any(k, v))
	}

	l.logger.LogAttrs(context.Background(), level, event.Msg, attrs...)
}
