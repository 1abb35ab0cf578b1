// Package sysutil holds small process-level helpers shared by the
// entrypoint: zerolog bootstrap and environment plumbing.
package sysutil

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog level and, when pretty is set,
// switches the global logger to a human-readable console writer for local
// development. JSON output on stderr is the default.
func SetupLogging(level string, pretty bool) {
	zerolog.SetGlobalLevel(parseLevel(level))
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}

// parseLevel maps a level string to a zerolog level, defaulting to info.
// Supported values (case-insensitive): debug, info, warn, error, fatal, panic.
func parseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
