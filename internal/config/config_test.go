package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"todoctl/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(config.APIURLEnv, "")
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.APIURL != config.DefaultAPIURL {
		t.Errorf("expected %q, got %q", config.DefaultAPIURL, cfg.APIURL)
	}
	if cfg.TokenPath() != filepath.Join(dir, "token.json") {
		t.Errorf("unexpected token path %q", cfg.TokenPath())
	}
}

func TestNew_ConfigFile(t *testing.T) {
	t.Setenv(config.APIURLEnv, "")
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: https://todo.example.com/api/\n"), 0600)
	if err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://todo.example.com/api" {
		t.Errorf("expected trimmed api url, got %q", cfg.APIURL)
	}
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: https://file.example.com\n"), 0600)
	if err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}
	t.Setenv(config.APIURLEnv, "https://env.example.com")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://env.example.com" {
		t.Errorf("expected env api url, got %q", cfg.APIURL)
	}
}

func TestNew_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: [unterminated\n"), 0600)
	if err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}

	if _, err := config.New(dir); err == nil {
		t.Error("expected error for malformed config.yaml")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "todoctl") {
		t.Errorf("unexpected default dir %q", got)
	}
}
