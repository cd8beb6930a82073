// Package config handles the configuration directory, config file and token path.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todoctl"

	// ConfigFile is the optional YAML settings file.
	ConfigFile = "config.yaml"

	// TokenFile is the stored session credential filename.
	TokenFile = "token.json"

	// DefaultAPIURL is the account/task service used when nothing else is configured.
	DefaultAPIURL = "http://127.0.0.1:8000"

	// APIURLEnv overrides the api_url setting.
	APIURLEnv = "TODOCTL_API_URL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL of the remote account/task service.
	APIURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig mirrors config.yaml.
type fileConfig struct {
	APIURL string `yaml:"api_url"`
}

// New creates a Config for the default or specified config directory and
// resolves the API URL from config.yaml and the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/todoctl or $HOME/.config/todoctl.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, APIURL: DefaultAPIURL}

	fc, err := readFile(cfg.ConfigPath())
	if err != nil {
		return nil, err
	}
	if fc.APIURL != "" {
		cfg.APIURL = fc.APIURL
	}
	if env := strings.TrimSpace(os.Getenv(APIURLEnv)); env != "" {
		cfg.APIURL = env
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return fc, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}
