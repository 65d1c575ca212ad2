// Package common holds helpers shared by the CLI actions.
package common

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger every action uses. quiet raises the
// level so only errors reach stderr.
func NewLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
