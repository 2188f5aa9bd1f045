// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Point the loader at an empty directory so no real config is picked up.
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.GalaxyBin != "ansible-galaxy" {
		t.Errorf("GalaxyBin = %q, want %q", cfg.GalaxyBin, "ansible-galaxy")
	}
	if cfg.CompressionLevel != 9 {
		t.Errorf("CompressionLevel = %d, want 9", cfg.CompressionLevel)
	}
	if cfg.Verbose {
		t.Error("Verbose = true, want false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := "galaxy_bin = \"/opt/ansible/bin/ansible-galaxy\"\ncompression_level = 6\nverbose = true\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	SetConfigFilePathOverride(cfgPath)
	defer SetConfigFilePathOverride("")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.GalaxyBin != "/opt/ansible/bin/ansible-galaxy" {
		t.Errorf("GalaxyBin = %q", cfg.GalaxyBin)
	}
	if cfg.CompressionLevel != 6 {
		t.Errorf("CompressionLevel = %d, want 6", cfg.CompressionLevel)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	SetConfigFilePathOverride(filepath.Join(t.TempDir(), "nope.toml"))
	defer SetConfigFilePathOverride("")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with missing explicit config file should fail")
	}
}

func TestLoadRejectsBadCompressionLevel(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("compression_level = 42\n"), 0644); err != nil {
		t.Fatal(err)
	}

	SetConfigFilePathOverride(cfgPath)
	defer SetConfigFilePathOverride("")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject compression_level outside 1-9")
	}
}
