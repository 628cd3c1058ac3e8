package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vanshika/netviz/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("loaded", "dataset", "lawrence")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered: %s", out)
	}
	if !strings.Contains(out, `"dataset":"lawrence"`) {
		t.Fatalf("expected json attribute, got %s", out)
	}

	buf.Reset()
	NewWithWriter(config.LoggingConfig{Format: "text"}, &buf).Info("loaded", "dataset", "complex")
	if !strings.Contains(buf.String(), "dataset=complex") {
		t.Fatalf("expected text attribute, got %s", buf.String())
	}
}
