package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithUser returns a logger with user context attached.
// Use this for all logging within a per-user request or job.
func WithUser(userID string) *slog.Logger {
	return slog.With("user_id", userID)
}

// WithPeriod returns a logger scoped to a specific analysis period.
func WithPeriod(logger *slog.Logger, start, end time.Time) *slog.Logger {
	return logger.With(
		"period_start", start.Format(time.RFC3339),
		"period_end", end.Format(time.RFC3339),
	)
}
