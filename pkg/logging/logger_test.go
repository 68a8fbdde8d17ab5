package logging

import (
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		logger := New(level)
		if logger == nil || logger.Logger == nil {
			t.Fatalf("expected logger for level %q", level)
		}
	}
}

func TestDefaultLogsAtInfo(t *testing.T) {
	logger := Default()
	if !logger.Enabled(nil, slog.LevelInfo) {
		t.Fatal("expected info to be enabled by default")
	}
	if logger.Enabled(nil, slog.LevelDebug) {
		t.Fatal("expected debug to be disabled by default")
	}
}
