package main

import (
	"io"
	"log/slog"
)

// newLogger returns a structured logger writing to w. verbose forces debug
// level; jsonFormat selects the JSON handler used by the Lambda entry point.
func newLogger(w io.Writer, level string, verbose, jsonFormat bool) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
