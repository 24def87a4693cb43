package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger. JSON output when LOG_FORMAT is
// "json", readable text otherwise. Every record carries the service name so
// warden lines are filterable when the server and worker log to one stream.
func NewLogger(cfg *Config) *slog.Logger {
	format := ""
	if cfg != nil {
		format = cfg.LogFormat
	}
	return newLogger(os.Stdout, format)
}

func newLogger(w io.Writer, format string) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", "warden"))
}
