// Package logger configures the process-wide slog default and hands out
// component-scoped loggers. All output goes to stderr: stdout is reserved
// for search results and command output.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// requestIDKey carries the request id FromContext annotates log lines with.
type requestIDKey struct{}

// levels maps configuration names to slog levels. Lookup is
// case-insensitive; unknown names fall back to info.
var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Setup installs the process-wide default logger and returns it. Format
// "json" selects the JSON handler, anything else text.
func Setup(level, format string) *slog.Logger {
	log := slog.New(newHandler(os.Stderr, level, format))
	slog.SetDefault(log)
	return log
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(name string) slog.Level {
	if lvl, ok := levels[strings.ToLower(name)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// WithRequestID stores a request id for FromContext to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// FromContext returns the default logger, annotated with the request id
// when one was stored on the context.
func FromContext(ctx context.Context) *slog.Logger {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return slog.Default().With("request_id", id)
	}
	return slog.Default()
}

// WithComponent returns the default logger tagged with the subsystem name
// every component logs under.
func WithComponent(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
