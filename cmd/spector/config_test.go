package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if cfg := LoadConfig(); cfg != (Config{}) {
		t.Errorf("missing file should yield zero config, got %+v", cfg)
	}

	confDir := filepath.Join(dir, "spector")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "data_dir: /srv/spectra\nlog_level: debug\nlog_format: json\nserver_address: 0.0.0.0:9090\n"
	if err := os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig()
	if cfg.DataDir != "/srv/spectra" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log config = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ServerAddress != "0.0.0.0:9090" {
		t.Errorf("server_address = %q", cfg.ServerAddress)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	confDir := filepath.Join(dir, "spector")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte("::notyaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg := LoadConfig(); cfg != (Config{}) {
		t.Errorf("malformed file should yield zero config, got %+v", cfg)
	}
}
