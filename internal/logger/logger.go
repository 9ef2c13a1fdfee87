// Package logger holds the process-wide zerolog logger and the privacy helpers used with it.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger. It writes human-readable lines until SetJSON is called.
var Log = newConsole(os.Stdout)

func init() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func newConsole(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().Timestamp().Caller().Logger()
}

// SetLevel applies a LOG_LEVEL value. Anything zerolog does not know, or an empty value, means info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// SetJSON switches the global logger to JSON lines on stdout.
func SetJSON() {
	SetOutput(os.Stdout)
}

// SetOutput makes the global logger write JSON lines to w.
func SetOutput(w io.Writer) {
	Log = zerolog.New(w).With().Timestamp().Logger()
}

// Component returns a child of Log tagged with the component name.
func Component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}
