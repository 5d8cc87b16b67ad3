// Package logging builds the zerolog loggers used by the binaries.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a console logger writing to w at the given level.
func New(level string, w io.Writer) zerolog.Logger {
	return newLogger(level, zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	})
}

// NewPlain is New without colors, for log files and non-terminal sinks.
func NewPlain(level string, w io.Writer) zerolog.Logger {
	return newLogger(level, zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})
}

func newLogger(level string, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().Timestamp().
		Logger()
}
