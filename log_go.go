//go:build !tinygo

package gate

import (
	"io"
	"log/slog"
)

type slogLogger struct {
	logger *slog.Logger
}

// NewLogger returns a Logger writing slog text records to w.  Lines below
// level are dropped; an unrecognized level means INFO.
func NewLogger(w io.Writer, level string) Logger {
	var l slog.Level
	switch normLevel(level) {
	case LevelDebug:
		l = slog.LevelDebug
	case LevelError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})
	return &slogLogger{logger: slog.New(handler)}
}

func (s *slogLogger) Info(tag, msg string) {
	s.logger.Info(msg, "tag", tag)
}

func (s *slogLogger) Error(tag, msg string) {
	s.logger.Error(msg, "tag", tag)
}
