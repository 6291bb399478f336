package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  env: dev\n")

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("http_addr=%q", cfg.Server.HTTPAddr)
	}
	if cfg.Alerts.AbsoluteDeltaThreshold != 0.05 {
		t.Fatalf("absolute threshold=%v want 0.05", cfg.Alerts.AbsoluteDeltaThreshold)
	}
	if cfg.Alerts.RelativeDeltaThreshold != 0.20 {
		t.Fatalf("relative threshold=%v want 0.20", cfg.Alerts.RelativeDeltaThreshold)
	}
	if cfg.Alerts.MinVolumeThreshold != 100 {
		t.Fatalf("min volume=%v want 100", cfg.Alerts.MinVolumeThreshold)
	}
	if cfg.Alerts.Cooldown != 15*time.Minute {
		t.Fatalf("cooldown=%v want 15m", cfg.Alerts.Cooldown)
	}
	if cfg.Alerts.DetectionWindow != time.Hour {
		t.Fatalf("window=%v want 1h", cfg.Alerts.DetectionWindow)
	}
	if cfg.Broadcast.Interval != 5*time.Second {
		t.Fatalf("interval=%v want 5s", cfg.Broadcast.Interval)
	}
	if cfg.Cron.SnapshotRefresh != "@every 5m" {
		t.Fatalf("snapshot refresh=%q", cfg.Cron.SnapshotRefresh)
	}
	if !cfg.Cron.Enabled {
		t.Fatalf("cron must default enabled")
	}
}

func TestLoad_FileOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":9090"
alerts:
  absolute_delta_threshold: 0.10
  cooldown: 30m
broadcast:
  trade_limit: 25
`)

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Fatalf("http_addr=%q want :9090", cfg.Server.HTTPAddr)
	}
	if cfg.Alerts.AbsoluteDeltaThreshold != 0.10 {
		t.Fatalf("absolute threshold=%v want 0.10", cfg.Alerts.AbsoluteDeltaThreshold)
	}
	if cfg.Alerts.Cooldown != 30*time.Minute {
		t.Fatalf("cooldown=%v want 30m", cfg.Alerts.Cooldown)
	}
	if cfg.Broadcast.TradeLimit != 25 {
		t.Fatalf("trade limit=%d want 25", cfg.Broadcast.TradeLimit)
	}
	// Untouched keys keep their defaults.
	if cfg.Alerts.RelativeDeltaThreshold != 0.20 {
		t.Fatalf("relative threshold=%v want default 0.20", cfg.Alerts.RelativeDeltaThreshold)
	}
}
