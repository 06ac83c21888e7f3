// testing.go
package logger

import (
	"io"
)

// Discard returns a logger that drops everything, for silent tests
func Discard() Logger {
	return NewSlogLogger(io.Discard, LogLevelError, false)
}

// NewBufferLogger returns a debug-level text logger writing to w,
// for tests that inspect log output
func NewBufferLogger(w io.Writer) Logger {
	return NewSlogLogger(w, LogLevelDebug, false)
}
