package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aurel42/sunviewfinder/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	cfg := &config.LogConfig{
		Server: config.LogSettings{
			Path:  serverLog,
			Level: "DEBUG",
		},
		Requests: config.LogSettings{
			Path:  requestLog,
			Level: "INFO",
		},
	}

	// Run Init
	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	// Verify Files Created
	if _, err := os.Stat(serverLog); os.IsNotExist(err) {
		t.Error("Server log file not created")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}

	// Verify RequestLogger is set
	if RequestLogger == nil {
		t.Error("RequestLogger was not initialized")
	}
}

func TestSetupHandler_Levels(t *testing.T) {
	// setupHandler is unexported; this test lives in package logging to
	// reach it. An empty path with stdout=false yields a discard handler
	// whose only behavior is its level threshold.
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	ctx := context.Background()
	for _, tt := range tests {
		h, _, err := setupHandler("", tt.level, false)
		if err != nil {
			t.Fatalf("setupHandler(%q) failed: %v", tt.level, err)
		}
		if !h.Enabled(ctx, tt.want) {
			t.Errorf("level %q: expected %v to be enabled", tt.level, tt.want)
		}
		if h.Enabled(ctx, tt.want-1) {
			t.Errorf("level %q: expected %v to be disabled", tt.level, tt.want-1)
		}
	}
}
