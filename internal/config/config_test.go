package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitDirCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, AppDir, "config.yaml"))
	if err != nil {
		t.Fatalf("config.yaml missing: %v", err)
	}
	if !strings.Contains(string(data), "server_url") {
		t.Fatalf("default config lacks server_url")
	}
	// Second init must not clobber an existing config.
	if err := os.WriteFile(filepath.Join(dir, AppDir, "config.yaml"), []byte("version: 1\nserver_url: http://edited\n"), 0o644); err != nil {
		t.Fatalf("edit config: %v", err)
	}
	if err := InitDir(dir); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, AppDir, "config.yaml"))
	if !strings.Contains(string(data), "http://edited") {
		t.Fatalf("re-init overwrote user config")
	}
}

func TestNewAppliesFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	body := "version: 1\nserver_url: http://backend:9000\nscroll:\n  edge_rows: 6\n  speed_rows: 2\n"
	if err := os.WriteFile(filepath.Join(dir, AppDir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Settings.ServerURL != "http://backend:9000" {
		t.Fatalf("server_url = %s", cfg.Settings.ServerURL)
	}
	if cfg.Settings.Scroll.EdgeRows != 6 {
		t.Fatalf("edge_rows = %d", cfg.Settings.Scroll.EdgeRows)
	}
	// Untouched sections keep their defaults.
	if cfg.Settings.Simulation.StepDwellMs != 900 {
		t.Fatalf("step_dwell_ms default lost: %d", cfg.Settings.Simulation.StepDwellMs)
	}
}

func TestEnvOverridesServerURL(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	t.Setenv("TWINBOARD_SERVER_URL", "http://override:8001")
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Settings.ServerURL != "http://override:8001" {
		t.Fatalf("env override ignored: %s", cfg.Settings.ServerURL)
	}
}

func TestValidateRejectsBadScroll(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	body := "version: 1\nserver_url: http://x\nscroll:\n  edge_rows: 0\n  speed_rows: 3\n"
	if err := os.WriteFile(filepath.Join(dir, AppDir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected validation failure for edge_rows 0")
	}
}
