package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("binder loaded", "collection_id", "bnd-1")

	assert.Contains(t, buf.String(), `"msg":"binder loaded"`)
	assert.Contains(t, buf.String(), `"collection_id":"bnd-1"`)
}

func TestNew_ProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Environment: "production", Writer: &buf})

	log.Info("hello")

	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestPrettyHandler_WritesAttrsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelDebug, Environment: "development", Writer: &buf})

	log.Component("overlay").Warn("exclusion applied", "slot", "sv3-1-normal")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "exclusion applied")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "overlay")
	assert.Contains(t, out, "sv3-1-normal")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelWarn, Format: "pretty", Writer: &buf})

	log.Info("hidden")
	log.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "pretty", Writer: &buf})

	log.WithGroup("sync").Info("migrated", "count", 2)

	assert.Contains(t, buf.String(), "sync.count=")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
