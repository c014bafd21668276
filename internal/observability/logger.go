package observability

import (
	"log/slog"
	"os"

	"github.com/hydair/aqi-dashboard/internal/config"
)

// NewLogger builds the service logger from config. LOG_FORMAT selects the
// handler (json or text), LOG_LEVEL the threshold; unrecognized values
// fall back to JSON at info.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
