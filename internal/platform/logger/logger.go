package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Services log through
// *slog.Logger so handlers and workers share one configuration.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
