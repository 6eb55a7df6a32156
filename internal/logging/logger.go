// pattern: Imperative Shell

// Package logging provides scoped structured loggers backed by zap.
package logging

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider hands out loggers by scope. Manager and TestLogManager
// implement it.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a slog front end over a named zap logger. The zero value
// and NopLogger discard everything.
type ScopedLogger struct {
	slog  *slog.Logger
	scope string
}

func newScopedLogger(base *zap.Logger, level zapcore.Level, scope string) *ScopedLogger {
	named := base.Named(scope)
	return &ScopedLogger{
		slog:  slog.New(&zapHandler{zap: named, level: level}),
		scope: scope,
	}
}

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

func (l *ScopedLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *ScopedLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *ScopedLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *ScopedLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *ScopedLogger) log(level slog.Level, msg string, args []any) {
	if l == nil || l.slog == nil {
		return
	}
	l.slog.Log(context.Background(), level, msg, args...)
}

// With returns a logger that adds args to every entry.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l == nil || l.slog == nil {
		return l
	}
	return &ScopedLogger{slog: l.slog.With(args...), scope: l.scope}
}

// Timed logs msg at debug level with the time elapsed since start.
func (l *ScopedLogger) Timed(start time.Time, msg string, args ...any) {
	l.Debug(msg, append(args, "elapsed", time.Since(start))...)
}

// Slog exposes the underlying slog logger for libraries that want one.
// It is never nil.
func (l *ScopedLogger) Slog() *slog.Logger {
	if l == nil || l.slog == nil {
		return slog.New(discardHandler{})
	}
	return l.slog
}

// StdLogger returns a *log.Logger writing at error level, for
// http.Server.ErrorLog and similar.
func (l *ScopedLogger) StdLogger() *log.Logger {
	return slog.NewLogLogger(l.Slog().Handler(), slog.LevelError)
}

// Scope returns the dotted scope, e.g. "catalog.watch".
func (l *ScopedLogger) Scope() string {
	if l == nil {
		return ""
	}
	return l.scope
}

// zapHandler adapts a zap logger to slog.Handler.
type zapHandler struct {
	zap    *zap.Logger
	level  zapcore.Level
	fields []zap.Field
}

func (h *zapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return zapLevel(level) >= h.level
}

func (h *zapHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, len(h.fields)+r.NumAttrs())
	fields = append(fields, h.fields...)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, zapField(a))
		return true
	})

	if ce := h.zap.Check(zapLevel(r.Level), r.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, 0, len(h.fields)+len(attrs))
	fields = append(fields, h.fields...)
	for _, a := range attrs {
		fields = append(fields, zapField(a))
	}
	return &zapHandler{zap: h.zap, level: h.level, fields: fields}
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	return &zapHandler{zap: h.zap.Named(name), level: h.level, fields: h.fields}
}

func zapField(a slog.Attr) zap.Field {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return zap.String(a.Key, v.String())
	case slog.KindInt64:
		return zap.Int64(a.Key, v.Int64())
	case slog.KindBool:
		return zap.Bool(a.Key, v.Bool())
	case slog.KindDuration:
		return zap.Duration(a.Key, v.Duration())
	default:
		if err, ok := v.Any().(error); ok {
			return zap.NamedError(a.Key, err)
		}
		return zap.Any(a.Key, v.Any())
	}
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
