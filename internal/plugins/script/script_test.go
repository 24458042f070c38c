package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kingrea/topsy/internal/config"
	"github.com/kingrea/topsy/internal/plugin"
)

const counterScript = `package main

import "errors"

var (
	frames int
	label  string
)

func Init(options map[string]any) error {
	label, _ = options["label"].(string)
	if _, leaked := options["path"]; leaked {
		return errors.New("path leaked into options")
	}
	return nil
}

func Process() bool {
	frames++
	return frames%2 == 0
}

func Close() error {
	if label != "hello" {
		return errors.New("unexpected label " + label)
	}
	return nil
}
`

func TestScriptCapabilitiesFollowDeclaredFunctions(t *testing.T) {
	tests := []struct {
		name string
		code string
		caps plugin.Capability
	}{
		{name: "both", code: counterScript, caps: plugin.CapProcess | plugin.CapClose},
		{name: "process only", code: "package main\n\nfunc Process() {}\n", caps: plugin.CapProcess},
		{name: "close only", code: "package main\n\nfunc Close() {}\n", caps: plugin.CapClose},
		{name: "inert", code: "package main\n\nvar Answer = 42\n", caps: plugin.CapNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, tt.code)
			p, err := Load(path, plugin.Options{"label": "hello"}, zerolog.Nop())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := plugin.Capabilities(p); got != tt.caps {
				t.Fatalf("capabilities = %s, want %s", got, tt.caps)
			}
		})
	}
}

func TestScriptRunsThroughHost(t *testing.T) {
	path := writeScript(t, counterScript)
	reg := plugin.NewRegistry()
	Register(reg)
	configs := []config.PluginConfig{{
		Module:  moduleID,
		Options: map[string]any{"path": path, "label": "hello"},
	}}
	host, err := plugin.NewHost(reg, plugin.Env{Logger: zerolog.Nop()}, configs)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := host.ProcessFrame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if err := host.CloseAll(); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	p := host.Plugins()[0].(*Plugin)
	if p.Info().Name != strings.TrimSuffix(filepath.Base(path), ".go") {
		t.Fatalf("name = %q", p.Info().Name)
	}
}

func TestScriptErrorsSurface(t *testing.T) {
	path := writeScript(t, "package main\n\nimport \"errors\"\n\nfunc Process() (bool, error) { return false, errors.New(\"nope\") }\n")
	p, err := Load(path, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := p.Process(); err == nil || err.Error() != "nope" {
		t.Fatalf("expected script error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close without Close func should be nil, got %v", err)
	}
}

func TestLoadRejectsBadScripts(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "empty", code: "  \n", want: "empty"},
		{name: "syntax", code: "package main\n\nfunc Process( {\n", want: "interpret"},
		{name: "bad process", code: "package main\n\nfunc Process(n int) bool { return n > 0 }\n", want: "must not take arguments"},
		{name: "bad close", code: "package main\n\nfunc Close() int { return 1 }\n", want: "must return error"},
		{name: "init fails", code: "package main\n\nimport \"errors\"\n\nfunc Init(map[string]any) error { return errors.New(\"no thanks\") }\n", want: "no thanks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScript(t, tt.code), nil, zerolog.Nop())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
	if _, err := Load("", nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing path")
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.go"), nil, zerolog.Nop())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clock.go")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
