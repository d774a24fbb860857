package common

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger every command writes to stderr.
// quiet wins over verbose.
func NewLogger(quiet, verbose bool) *slog.Logger {
	return newLogger(os.Stderr, quiet, verbose)
}

func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch {
	case quiet:
		logLevel = slog.LevelError
	case verbose:
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
