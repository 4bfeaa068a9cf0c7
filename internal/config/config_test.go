package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ShowTiming != Defaults().ShowTiming {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	body := "show_timing = true\nhistory_file = \"custom_history\"\n"
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.ShowTiming {
		t.Fatalf("expected ShowTiming true, got %+v", cfg)
	}
	if cfg.HistoryFile != "custom_history" {
		t.Fatalf("got HistoryFile %q", cfg.HistoryFile)
	}
}
