package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Log.RetentionDays != 90 {
		t.Errorf("retention days = %d, want 90", cfg.Log.RetentionDays)
	}
	if !cfg.Log.CleanupEnabled() {
		t.Error("cleanup should default to enabled")
	}
	if cfg.Server.AuthRateLimit != 5 || cfg.Server.AuthRateBurst != 10 {
		t.Errorf("auth rate limit = %v/%d, want 5/10", cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst)
	}
}

func TestLoad_PartialFileKeepsCleanupEnabled(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: debug
  retention_days: 30
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.RetentionDays != 30 {
		t.Errorf("retention days = %d, want 30", cfg.Log.RetentionDays)
	}
	if !cfg.Log.CleanupEnabled() {
		t.Error("omitting auto_cleanup_enabled must keep cleanup on")
	}
	if cfg.Log.CleanupCron == "" {
		t.Error("cleanup cron should fall back to the default")
	}
}

func TestLoad_ExplicitCleanupDisable(t *testing.T) {
	path := writeConfigFile(t, `
log:
  auto_cleanup_enabled: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.CleanupEnabled() {
		t.Error("auto_cleanup_enabled: false must disable cleanup")
	}
}

func TestLoad_CleanupEnvOverride(t *testing.T) {
	t.Setenv("LOG_AUTO_CLEANUP_ENABLED", "false")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.CleanupEnabled() {
		t.Error("LOG_AUTO_CLEANUP_ENABLED=false must disable cleanup")
	}
}
