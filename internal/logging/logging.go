// Package logging configures the process-wide slog logger and provides the
// attribute helpers used across bbflow.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	if lvl, ok := logLevels[level]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// SetupLogging installs a stdout logger at level as the default and returns
// it. format is "json" or "text".
func SetupLogging(level, format string) *slog.Logger {
	return setup(os.Stdout, level, format)
}

func setup(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler).With(slog.String("service", "bbflow"))
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(lvl)
	return logger
}

// RequestID tags a log record with the infra active request id
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

// FlowName tags a log record with a building-block flow name
func FlowName(name string) slog.Attr {
	return slog.String("flow_name", name)
}

// Error records err under the "error" key. A nil err logs an empty string.
func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
