package logger

import (
	"io"
	"log/slog"
	"os"
)

// New initializes an slog logger for a single pipeline run. Logs go to
// stderr so stdout stays clean for the rendered review in local mode.
func New(level slog.Level, format string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text":
		fallthrough
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
