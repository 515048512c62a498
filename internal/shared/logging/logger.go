package logging

import (
	"log/slog"
	"os"
)

// New returns a slog.Logger configured for structured JSON output on
// stderr, so protocol output on stdout stays clean. The level comes from
// GRIDPILOT_LOG_LEVEL when set (debug, info, warn, error).
func New(subsystem string) *slog.Logger {
	level := slog.LevelInfo
	if raw := os.Getenv("GRIDPILOT_LOG_LEVEL"); raw != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(raw)); err == nil {
			level = parsed
		}
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("subsystem", subsystem)
}
