// Package log provides leveled, colored console logging for securesock
// and a traffic-capturing wrapper for client connections.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed).FprintfFunc()
	yellow = color.New(color.FgYellow).FprintfFunc()
	blue   = color.New(color.FgBlue).FprintfFunc()
	faint  = color.New(color.Faint).FprintfFunc()
)

// Logger writes prefixed, colored messages. Verbose messages are only
// printed when the logger was created with verbose enabled.
// A nil *Logger discards everything.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewLogger returns a logger writing to stderr.
func NewLogger(verbose bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo returns a logger writing to w.
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

// Verbose reports whether verbose messages are printed.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

// ErrorMsg prints an error message in red.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	l.print(red, "[!] Error: "+format, a...)
}

// WarnMsg prints a warning in yellow.
func (l *Logger) WarnMsg(format string, a ...interface{}) {
	l.print(yellow, "[!] Warning: "+format, a...)
}

// InfoMsg prints an informational message in blue.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	l.print(blue, "[+] "+format, a...)
}

// VerboseMsg prints a debug message if verbose logging is enabled.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if !l.Verbose() {
		return
	}
	l.print(faint, "[v] "+format, a...)
}

func (l *Logger) print(fn func(io.Writer, string, ...interface{}), format string, a ...interface{}) {
	if l == nil {
		return
	}
	if len(format) == 0 || format[len(format)-1] != '\n' {
		format += "\n"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.out, format, a...)
}

var std = NewLogger(false)

// ErrorMsg prints an error message to stderr in red color.
func ErrorMsg(format string, a ...interface{}) {
	std.ErrorMsg(format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func InfoMsg(format string, a ...interface{}) {
	std.InfoMsg(format, a...)
}
