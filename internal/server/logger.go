// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"codeberg.org/oliverandrich/nutrilab/internal/config"
)

// setupLogger installs the process-wide slog logger.
func setupLogger(cfg *config.LogConfig) {
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, cfg)))
}

// newLogHandler writes colored text for terminals or JSON for log
// collectors. Unknown levels fall back to info.
func newLogHandler(w io.Writer, cfg *config.LogConfig) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	// Source locations only help while debugging.
	addSource := level <= slog.LevelDebug

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: addSource})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  addSource,
		TimeFormat: time.TimeOnly,
		NoColor:    w != os.Stdout,
	})
}
