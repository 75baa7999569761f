// Package logger provides the console logger used across the converter.
// Diagnostics go to stderr so stdout stays free for the run summary.
package logger

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger is the logging interface the converters depend on.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// StandardLogger implements Logger on top of the standard library log
// package. A nil underlying logger means quiet mode: everything is dropped.
type StandardLogger struct {
	verbose bool
	logger  *log.Logger
}

// New creates a logger. Debug messages are emitted only in verbose mode;
// quiet suppresses all output entirely.
func New(verbose, quiet bool) Logger {
	l := &StandardLogger{verbose: verbose && !quiet}
	if !quiet {
		l.logger = log.New(os.Stderr, "", 0)
	}
	return l
}

// Debug logs diagnostic messages (verbose mode only).
func (l *StandardLogger) Debug(format string, args ...interface{}) {
	if l.verbose {
		l.logWithLevel("DEBUG", format, args...)
	}
}

// Info logs informational messages.
func (l *StandardLogger) Info(format string, args ...interface{}) {
	l.logWithLevel("INFO", format, args...)
}

// Warn logs warning messages.
func (l *StandardLogger) Warn(format string, args ...interface{}) {
	l.logWithLevel("WARN", format, args...)
}

// Error logs error messages.
func (l *StandardLogger) Error(format string, args ...interface{}) {
	l.logWithLevel("ERROR", format, args...)
}

func (l *StandardLogger) logWithLevel(level string, format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", timestamp, level, message)
}
