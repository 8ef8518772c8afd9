// Package log configures structured logging for lifelens. Logs are emitted
// as JSON through log/slog; errors created by pkg/errors carry cockroachdb
// stack traces which the handler surfaces as a "stacktrace" attribute.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// ErrAttrKey is the attribute key under which errors are logged.
	ErrAttrKey = "error"
	// StacktraceAttrKey is the attribute key for extracted stack traces.
	StacktraceAttrKey = "stacktrace"
)

// Options controls where and how logs are written.
type Options struct {
	Level string // debug, info, warn, error
	// File enables rotating file output in addition to stdout. Empty means
	// stdout only.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Setup installs the default slog logger. It panics on an invalid level,
// matching the fail-fast behavior expected at process startup.
func Setup(opts Options) {
	var w io.Writer = os.Stdout
	if opts.File != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		})
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     toLevel(opts.Level),
	})
	slog.SetDefault(slog.New(WrapByStackHandler(handler)))
}

func toLevel(level string) slog.Level {
	switch level {
	case "", "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}

// ErrAttr wraps an error for structured logging.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
