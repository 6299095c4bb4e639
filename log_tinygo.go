//go:build tinygo

package gate

import (
	"fmt"
	"io"
)

type printLogger struct {
	w       io.Writer
	noInfos bool
}

// NewLogger returns a Logger printing "I (tag) msg" lines to w, in the
// format of the ESP-IDF console.
func NewLogger(w io.Writer, level string) Logger {
	return &printLogger{w: w, noInfos: normLevel(level) == LevelError}
}

func (p *printLogger) Info(tag, msg string) {
	if !p.noInfos {
		fmt.Fprintf(p.w, "I (%s) %s\r\n", tag, msg)
	}
}

func (p *printLogger) Error(tag, msg string) {
	fmt.Fprintf(p.w, "E (%s) %s\r\n", tag, msg)
}
