package logging

import (
	"log/slog"
	"os"
	"strings"
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

// WithLead returns a logger with lead context fields attached.
// Use this for all logging within a lead-scoped operation.
func WithLead(leadID, company string) *slog.Logger {
	return slog.With(
		"lead_id", leadID,
		"company", company,
	)
}

// WithTask returns a logger scoped to a background task.
func WithTask(taskName, leadID string) *slog.Logger {
	return slog.With(
		"task", taskName,
		"lead_id", leadID,
	)
}
