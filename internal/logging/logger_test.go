package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func reset() {
	CloseAll()
	logsDir = ""
	settings = Settings{}
}

func TestInitializeDisabled(t *testing.T) {
	defer reset()

	ws := t.TempDir()
	if err := Initialize(ws, Settings{DebugMode: false}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Production mode: no logs directory is created
	if _, err := os.Stat(filepath.Join(ws, ".decoyforge", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory created despite debug mode disabled")
	}

	// Writing through a disabled logger is a no-op
	Generator("should not appear")
}

func TestInitializeDebugMode(t *testing.T) {
	defer reset()

	ws := t.TempDir()
	if err := Initialize(ws, Settings{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	l := Get(CategoryLedger)
	l.Info("minted token %s", "tok-1")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(ws, ".decoyforge", "logs", date+"_ledger.log"))
	if err != nil {
		t.Fatalf("expected ledger log file: %v", err)
	}
	if !strings.Contains(string(data), "minted token tok-1") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestCategoryFilter(t *testing.T) {
	defer reset()

	ws := t.TempDir()
	err := Initialize(ws, Settings{
		DebugMode:  true,
		Level:      "info",
		Categories: map[string]bool{"provider": false},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsCategoryEnabled(CategoryProvider) {
		t.Error("provider category should be disabled")
	}
	if !IsCategoryEnabled(CategoryGenerator) {
		t.Error("generator category should default to enabled")
	}
}

func TestLevelGating(t *testing.T) {
	defer reset()

	ws := t.TempDir()
	if err := Initialize(ws, Settings{DebugMode: true, Level: "warn"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	l := Get(CategoryPopulate)
	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn line")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(ws, ".decoyforge", "logs", date+"_populate.log"))
	if err != nil {
		t.Fatalf("expected populate log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("lines below warn level were written: %s", out)
	}
	if !strings.Contains(out, "warn line") {
		t.Errorf("warn line missing: %s", out)
	}
}
