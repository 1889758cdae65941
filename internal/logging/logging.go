// Package logging installs the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// Init sets the default slog logger to a JSON handler on stderr so log
// lines land in CloudWatch Logs as structured records.
func Init() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
