// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

// Logger writes key/value pairs to a Handler.
type Logger interface {
	// With returns a new Logger that has this logger's attributes plus the given attributes.
	With(ctx ...any) Logger

	// Log logs a message at the specified level with context key/value pairs.
	Log(level slog.Level, msg string, ctx ...any)

	// Trace log a message at the trace level with context key/value pairs.
	Trace(msg string, ctx ...any)

	// Debug logs a message at the debug level with context key/value pairs.
	Debug(msg string, ctx ...any)

	// Info logs a message at the info level with context key/value pairs.
	Info(msg string, ctx ...any)

	// Warn logs a message at the warn level with context key/value pairs.
	Warn(msg string, ctx ...any)

	// Error logs a message at the error level with context key/value pairs.
	Error(msg string, ctx ...any)

	// Crit logs a message at the crit level with context key/value pairs, then exits.
	Crit(msg string, ctx ...any)

	// Enabled reports whether l emits log records at the given context and level.
	Enabled(ctx context.Context, level slog.Level) bool

	// Handler returns the underlying handler of the inner logger.
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a logger with the specified handler set.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Log(level slog.Level, msg string, ctx ...any) {
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) {
	l.inner.Log(context.Background(), LevelTrace, msg, ctx...)
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.inner.Log(context.Background(), LevelDebug, msg, ctx...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.inner.Log(context.Background(), LevelInfo, msg, ctx...)
}

func (l *logger) Warn(msg string, ctx ...any) {
	l.inner.Log(context.Background(), LevelWarn, msg, ctx...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.inner.Log(context.Background(), LevelError, msg, ctx...)
}

func (l *logger) Crit(msg string, ctx ...any) {
	l.inner.Log(context.Background(), LevelCrit, msg, ctx...)
	os.Exit(1)
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner.Enabled(ctx, level)
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	root.Store(l)
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

// WithContext returns a logger bound to the root handler, carrying the given attributes.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx}
}

// lazyLogger defers root handler resolution to call time, so package level
// loggers created before SetDefault still pick up the configured handler.
type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) resolve() Logger { return Root().With(l.ctx...) }

func (l *lazyLogger) With(ctx ...any) Logger { return l.resolve().With(ctx...) }
func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.resolve().Log(level, msg, ctx...)
}
func (l *lazyLogger) Trace(msg string, ctx ...any) { l.resolve().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.resolve().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.resolve().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.resolve().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.resolve().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.resolve().Crit(msg, ctx...) }
func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.resolve().Enabled(ctx, level)
}
func (l *lazyLogger) Handler() slog.Handler { return l.resolve().Handler() }
