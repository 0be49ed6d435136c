// Package pbclog is the thin logging wrapper threaded through the
// compiler pipeline so pkg/driver and its phases can report a
// phase-transition trail under --debug without every package
// importing the standard library's log package directly. Plain,
// line-oriented output to stderr; no structured logging framework.
package pbclog

import (
	"io"
	"log"
	"os"
)

// Logger emits debug-level phase-transition lines when enabled, and
// stays silent otherwise. The zero value is a disabled logger.
type Logger struct {
	debug *log.Logger
}

// New builds a Logger writing to w. When debug is false, Debugf is a
// no-op; normal compiler runs construct New(os.Stderr, false) and
// only --debug raises it.
func New(w io.Writer, debug bool) *Logger {
	if !debug {
		return &Logger{}
	}
	return &Logger{debug: log.New(w, "pbc: ", log.Ltime)}
}

// Default is a disabled logger, used where no flag has wired one in.
func Default() *Logger { return &Logger{} }

// Debugf logs a single phase-transition line, formatted like fmt.Sprintf.
// Silent when the Logger was constructed with debug disabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.debug == nil {
		return
	}
	l.debug.Printf(format, args...)
}

// Stderr is a convenience constructor matching the CLI's most common
// case: log straight to os.Stderr, gated by a --debug flag.
func Stderr(debug bool) *Logger { return New(os.Stderr, debug) }
