// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/config"
)

func TestNewLogHandler_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		dropped slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"WARN", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"", slog.LevelInfo, slog.LevelDebug},
		{"verbose", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			h := newLogHandler(&bytes.Buffer{}, &config.LogConfig{Level: tt.level})

			assert.True(t, h.Enabled(context.Background(), tt.enabled))
			assert.False(t, h.Enabled(context.Background(), tt.dropped))
		})
	}
}

func TestNewLogHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newLogHandler(&buf, &config.LogConfig{Level: "info", Format: "json"}))

	logger.Info("patient_created", "practitioner_id", 7, "patient_id", 12)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "patient_created", entry["msg"])
	assert.InDelta(t, 12, entry["patient_id"], 0)
	assert.NotContains(t, entry, slog.SourceKey)
}

func TestNewLogHandler_TextWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newLogHandler(&buf, &config.LogConfig{Level: "debug", Format: "text"}))

	logger.Warn("access_denied", "patient_id", 3)

	out := buf.String()
	assert.Contains(t, out, "access_denied")
	assert.Contains(t, out, "patient_id=3")
	assert.Contains(t, out, "logger_test.go")
	assert.NotContains(t, out, "\x1b[")
}
