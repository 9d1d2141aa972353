package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Theme != "solarized-dark" {
		t.Errorf("expected default theme 'solarized-dark', got %q", cfg.Theme)
	}
	if cfg.MinInterval != time.Second || cfg.RetryInterval != 15*time.Second {
		t.Errorf("unexpected intervals %v/%v", cfg.MinInterval, cfg.RetryInterval)
	}
	if cfg.RefreshLag != 0.1 {
		t.Errorf("expected refresh lag 0.1, got %v", cfg.RefreshLag)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Theme = "dracula"
	cfg.IcingaURL = "https://icinga.example.com:5665"
	cfg.IcingaCredential = "icinga-ro"
	cfg.RetryInterval = 30 * time.Second

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.Theme != "dracula" || loaded.IcingaCredential != "icinga-ro" {
		t.Errorf("fields not persisted: %+v", loaded)
	}
	if loaded.RetryInterval != 30*time.Second {
		t.Errorf("expected retry interval 30s, got %v", loaded.RetryInterval)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("LoadConfig() should return defaults for missing file, got error: %v", err)
	}
	if cfg.Theme != "solarized-dark" {
		t.Errorf("expected default theme, got %q", cfg.Theme)
	}
}

func TestConfigLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`min_interval = "soon"`), 0600)
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "min_interval") {
		t.Errorf("expected min_interval error, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"bad url", func(c *Config) { c.IcingaURL = "not a url" }, "IcingaURL"},
		{"negative lag", func(c *Config) { c.RefreshLag = -1 }, "RefreshLag"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"retry below min", func(c *Config) { c.RetryInterval = 10 * time.Millisecond }, "RetryInterval"},
		{"bad metrics addr", func(c *Config) { c.MetricsAddr = "nope" }, "MetricsAddr"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.edit(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error mentioning %s, got %v", tt.name, tt.want, err)
		}
	}
}
