// Package logging provides structured logging setup using log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnvVar enables debug logging when set to "1".
const DebugEnvVar = "GSBWIFI_DEBUG"

// Level represents the logging verbosity level.
type Level int

const (
	// LevelInfo is the default logging level for normal operation.
	LevelInfo Level = iota
	// LevelDebug enables verbose debug output, including every portal request.
	LevelDebug
)

// Setup initializes the global slog logger with the specified level.
// Call this once at application startup.
func Setup(level Level) {
	SetupWriter(os.Stderr, level)
}

// SetupWriter is Setup with an explicit destination.
// Log output goes to stderr by default so that command results on stdout stay clean.
func SetupWriter(w io.Writer, level Level) {
	slogLevel := slog.LevelInfo
	if level == LevelDebug {
		slogLevel = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// LevelFromEnv returns LevelDebug when GSBWIFI_DEBUG=1, LevelInfo otherwise.
// The force flag (usually --debug) always wins.
func LevelFromEnv(force bool) Level {
	if force || os.Getenv(DebugEnvVar) == "1" {
		return LevelDebug
	}
	return LevelInfo
}

// SetupFromEnv initializes the logger based on environment variables.
func SetupFromEnv() {
	Setup(LevelFromEnv(false))
}
