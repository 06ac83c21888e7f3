package logger

import (
	"context"
	"io"
	"log/slog"
)

// slogLogger adapts log/slog to the Logger interface
type slogLogger struct {
	sl     *slog.Logger
	module string
}

// NewSlogLogger creates a Logger writing to w at the given minimum level.
// JSON output when json is true, text otherwise.
func NewSlogLogger(w io.Writer, level LogLevel, json bool) Logger {
	opts := &slog.HandlerOptions{Level: toSlogLevel(level)}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &slogLogger{sl: slog.New(handler)}
}

// NewFromSlog wraps an existing slog.Logger
func NewFromSlog(sl *slog.Logger) Logger {
	return &slogLogger{sl: sl}
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *slogLogger) Module(name string) Logger {
	scoped := name
	if l.module != "" {
		scoped = l.module + "." + name
	}
	return &slogLogger{
		sl:     l.sl.With(slog.String("module", scoped)),
		module: scoped,
	}
}

func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{
		sl:     l.sl.With(toAttrs(fields)...),
		module: l.module,
	}
}

func (l *slogLogger) Debug(msg string, fields ...Field) {
	l.log(slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Info(msg string, fields ...Field) {
	l.log(slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Warn(msg string, fields ...Field) {
	l.log(slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Error(msg string, fields ...Field) {
	l.log(slog.LevelError, msg, fields)
}

func (l *slogLogger) Log(level LogLevel, msg string, fields ...Field) {
	l.log(toSlogLevel(level), msg, fields)
}

func (l *slogLogger) log(level slog.Level, msg string, fields []Field) {
	l.sl.LogAttrs(context.Background(), level, msg, attrsOf(fields)...)
}

func toAttrs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

func attrsOf(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	return attrs
}
