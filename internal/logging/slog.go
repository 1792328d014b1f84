package logging

import (
	"context"
	"io"
	"log/slog"
)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	base *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(base *slog.Logger) Logger {
	return &slogLogger{base: base}
}

// NewJSON returns a Logger writing one JSON object per line to w.
func NewJSON(w io.Writer) Logger {
	return &slogLogger{base: slog.New(slog.NewJSONHandler(w, nil))}
}

func (s *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.base.InfoContext(ctx, msg, args...)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.base.WarnContext(ctx, msg, args...)
}

func (s *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.base.ErrorContext(ctx, msg, args...)
}

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: s.base.With(args...)}
}
