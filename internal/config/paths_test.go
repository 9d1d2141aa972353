package config

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error: %v", err)
	}
	if dir == "" {
		t.Fatal("GetConfigDir() returned empty string")
	}
	// Should end with "meerkat"
	if filepath.Base(dir) != "meerkat" {
		t.Errorf("expected dir to end with 'meerkat', got %q", filepath.Base(dir))
	}
}

func TestGetConfigDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG test not applicable on Windows")
	}
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error: %v", err)
	}
	expected := filepath.Join(tmp, "meerkat")
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestGetDataDir(t *testing.T) {
	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir() error: %v", err)
	}
	if dir == "" {
		t.Fatal("GetDataDir() returned empty string")
	}
	if filepath.Base(dir) != "meerkat" {
		t.Errorf("expected dir to end with 'meerkat', got %q", filepath.Base(dir))
	}
}

func TestVaultAndLogPaths(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_DATA_HOME", tmp)
	if runtime.GOOS == "windows" {
		t.Skip("XDG test not applicable on Windows")
	}
	vault, err := GetVaultPath()
	if err != nil {
		t.Fatalf("GetVaultPath() error: %v", err)
	}
	if vault != filepath.Join(tmp, "meerkat", "credentials.enc") {
		t.Errorf("unexpected vault path %q", vault)
	}
	logPath, _ := GetLogPath()
	if filepath.Base(logPath) != "meerkat.log" {
		t.Errorf("unexpected log path %q", logPath)
	}
	exports, _ := GetExportsDir()
	if filepath.Base(exports) != "exports" {
		t.Errorf("unexpected exports dir %q", exports)
	}
}
