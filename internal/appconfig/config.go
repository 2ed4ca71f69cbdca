// Package appconfig manages application configuration and runtime file paths.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/treykane/wg-manager/internal/util"
	"gopkg.in/yaml.v3"
)

// WireGuardConfig locates tunnel configuration files and the wg-quick binary.
type WireGuardConfig struct {
	ConfigDir   string `yaml:"config_dir"`
	QuickBinary string `yaml:"quick_binary"`
}

// UIConfig contains TUI display settings.
type UIConfig struct {
	RefreshSeconds int `yaml:"refresh_seconds"`
}

// LogConfig controls the log file written next to config.yaml.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config holds application-level configuration.
type Config struct {
	WireGuard WireGuardConfig `yaml:"wireguard"`
	UI        UIConfig        `yaml:"ui"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		WireGuard: WireGuardConfig{
			ConfigDir:   util.DefaultConfigDir,
			QuickBinary: util.DefaultQuickBinary,
		},
		UI:  UIConfig{RefreshSeconds: util.DefaultRefreshSeconds},
		Log: LogConfig{Level: "info"},
	}
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/wg-manager.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, util.AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", util.AppName), nil
}

// FilePath returns the full path of a file stored in the config directory.
func FilePath(name string) (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

// LogFilePath returns the full path to wg-manager.log.
func LogFilePath() (string, error) {
	return FilePath("wg-manager.log")
}

// Load reads config.yaml from the config directory.
// If the file doesn't exist, creates it with defaults.
func Load() (Config, error) {
	d, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return Config{}, err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.UI.RefreshSeconds <= 0 {
		cfg.UI.RefreshSeconds = util.DefaultRefreshSeconds
	}
	if strings.TrimSpace(cfg.WireGuard.ConfigDir) == "" {
		cfg.WireGuard.ConfigDir = util.DefaultConfigDir
	}
	if strings.TrimSpace(cfg.WireGuard.QuickBinary) == "" {
		cfg.WireGuard.QuickBinary = util.DefaultQuickBinary
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "debug", "info", "warn", "error":
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	default:
		cfg.Log.Level = "info"
	}
}

// Save writes config to config.yaml.
func Save(cfg Config) error {
	d, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
