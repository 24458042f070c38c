package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topsy", "topsy.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Version != LatestVersion {
		t.Fatalf("version = %d, want %d", cfg.Version, LatestVersion)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q, want info", cfg.LogLevel)
	}
	if len(cfg.Plugins) != 0 {
		t.Fatalf("expected no plugins by default, got %d", len(cfg.Plugins))
	}
	if cfg.Path != path {
		t.Fatalf("path = %q, want %q", cfg.Path, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestParseKeepsPluginOptionsVerbatim(t *testing.T) {
	configYAML := strings.TrimSpace(`
version: 1
log_level: DEBUG
plugins:
  - module: notes
    notes_directory: ~/notes
    extension: .md
  - module: " script "
    path: /tmp/clock.go
    interval: 5
    labels:
      tz: UTC
`)
	cfg, err := Parse([]byte(configYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.LogLevel)
	}
	if len(cfg.Plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(cfg.Plugins))
	}
	notes := cfg.Plugins[0]
	if notes.Module != "notes" {
		t.Fatalf("module = %q", notes.Module)
	}
	if _, ok := notes.Options["module"]; ok {
		t.Fatalf("module key must not be passed as an option")
	}
	if notes.Options["notes_directory"] != "~/notes" {
		t.Fatalf("notes_directory = %v", notes.Options["notes_directory"])
	}
	script := cfg.Plugins[1]
	if script.Module != "script" {
		t.Fatalf("module not trimmed: %q", script.Module)
	}
	if script.Options["interval"] != 5 {
		t.Fatalf("interval = %#v", script.Options["interval"])
	}
	labels, ok := script.Options["labels"].(map[string]any)
	if !ok || labels["tz"] != "UTC" {
		t.Fatalf("labels = %#v", script.Options["labels"])
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "old version", yaml: "version: 0\n", want: "unsupported configuration version"},
		{name: "bad level", yaml: "version: 1\nlog_level: loud\n", want: "log_level"},
		{name: "missing module", yaml: "version: 1\nplugins:\n  - notes_directory: x\n", want: "plugins[0]: module is required"},
		{name: "not yaml", yaml: "version: [", want: "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandPath("~/notes")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "notes") {
		t.Fatalf("got %q, want %q", got, filepath.Join(home, "notes"))
	}
	rel, err := ExpandPath("notes")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if !filepath.IsAbs(rel) {
		t.Fatalf("relative path not made absolute: %q", rel)
	}
	if _, err := ExpandPath("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestStateDirHonoursXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_STATE_HOME", base)
	dir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir: %v", err)
	}
	if dir != filepath.Join(base, AppName) {
		t.Fatalf("dir = %q", dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("state dir not created: %v", err)
	}
}
