package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WireGuard.ConfigDir != "/etc/wireguard" {
		t.Fatalf("unexpected config dir: %s", cfg.WireGuard.ConfigDir)
	}
	if cfg.WireGuard.QuickBinary != "wg-quick" {
		t.Fatalf("unexpected quick binary: %s", cfg.WireGuard.QuickBinary)
	}
	if cfg.UI.RefreshSeconds != 3 {
		t.Fatalf("unexpected refresh seconds: %d", cfg.UI.RefreshSeconds)
	}
	if _, err := os.Stat(filepath.Join(xdg, "wg-manager", "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml to be written: %v", err)
	}
}

func TestLoad_NormalizesInvalidValues(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "wg-manager")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	content := []byte(strings.Join([]string{
		"wireguard:",
		"  config_dir: \"  \"",
		"  quick_binary: \"\"",
		"ui:",
		"  refresh_seconds: -4",
		"log:",
		"  level: LOUD",
		"",
	}, "\n"))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WireGuard.ConfigDir != "/etc/wireguard" {
		t.Fatalf("expected default config dir, got %q", cfg.WireGuard.ConfigDir)
	}
	if cfg.WireGuard.QuickBinary != "wg-quick" {
		t.Fatalf("expected default quick binary, got %q", cfg.WireGuard.QuickBinary)
	}
	if cfg.UI.RefreshSeconds != 3 {
		t.Fatalf("expected default refresh, got %d", cfg.UI.RefreshSeconds)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected info level, got %s", cfg.Log.Level)
	}
}

func TestLoad_KeepsCustomValues(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	cfg := Default()
	cfg.WireGuard.ConfigDir = "/srv/wg"
	cfg.Log.Level = "debug"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.WireGuard.ConfigDir != "/srv/wg" || got.Log.Level != "debug" {
		t.Fatalf("custom values lost: %+v", got)
	}
}
