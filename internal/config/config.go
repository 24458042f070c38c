// internal/config/config.go
//
// This package owns topsy.yaml: where it lives, what it may contain, and the
// defaults written on first launch. It also knows where runtime state (logs)
// goes so the overlay never writes next to the user's notes.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppName names the config and state directories.
	AppName = "topsy"

	// LatestVersion is the only config schema version this build reads.
	LatestVersion = 1

	configFileName  = "topsy.yaml"
	defaultLogLevel = "info"
)

const defaultConfigYAML = `# topsy configuration
version: 1

# debug, info, warn or error. Logs go to the state directory, never the screen.
log_level: info

# Plugins are constructed in this order and drawn in this order every frame.
# "module" picks the implementation; every other key is handed to it as-is.
plugins: []
#  - module: notes
#    notes_directory: ~/notes
#  - module: script
#    path: ~/.config/topsy/scripts/clock.go
`

// PluginConfig declares one plugin instance. Module names the registered
// implementation; all remaining keys are implementation options.
type PluginConfig struct {
	Module  string         `yaml:"module"`
	Options map[string]any `yaml:",inline"`
}

// Config models topsy.yaml.
type Config struct {
	Version  int            `yaml:"version"`
	LogLevel string         `yaml:"log_level,omitempty"`
	Plugins  []PluginConfig `yaml:"plugins"`

	// Path is the file this configuration was read from.
	Path string `yaml:"-"`
}

// DefaultPath returns $XDG_CONFIG_HOME/topsy/topsy.yaml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config dir: %w", err)
	}
	return filepath.Join(dir, AppName, configFileName), nil
}

// StateDir returns the directory for logs and other runtime state, creating
// it if needed.
func StateDir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: locate home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: ensure state dir: %w", err)
	}
	return dir, nil
}

// Load reads the configuration at path, writing the default file first if
// none exists yet.
func Load(path string) (*Config, error) {
	if err := ensureConfig(path); err != nil {
		return nil, fmt.Errorf("config: ensure %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	for i := range c.Plugins {
		c.Plugins[i].Module = strings.TrimSpace(c.Plugins[i].Module)
	}
}

func (c *Config) validate() error {
	if c.Version != LatestVersion {
		return fmt.Errorf("unsupported configuration version %d (want %d)", c.Version, LatestVersion)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	for i, plugin := range c.Plugins {
		if plugin.Module == "" {
			return fmt.Errorf("plugins[%d]: module is required", i)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory and returns
// an absolute, cleaned path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("config: empty path")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: expand %s: %w", trimmed, err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", trimmed, err)
	}
	return abs, nil
}

func ensureConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
