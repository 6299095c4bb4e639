package gate

import "strings"

// Logger is the status line sink.  Nothing is returned; a logger that cannot
// write drops the line.
type Logger interface {
	Info(tag, msg string)
	Error(tag, msg string)
}

// Log levels accepted by NewLogger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

func normLevel(level string) string {
	switch l := strings.ToUpper(level); l {
	case LevelDebug, LevelInfo, LevelError:
		return l
	}
	return LevelInfo
}
