// Package script runs a plugin written as a Go source file, interpreted with
// yaegi. The file is a `package main` declaring any of:
//
//	func Init(options map[string]any) error
//	func Process() bool            // or (bool, error), or no result
//	func Close()                   // or error
//
// Whichever functions are present make up the plugin's capability set. All
// options except path are handed to Init unchanged.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/topsy/internal/config"
	"github.com/kingrea/topsy/internal/plugin"
)

const (
	moduleID      = "script"
	moduleVersion = "1.0.0"

	initFuncName    = "Init"
	processFuncName = "Process"
	closeFuncName   = "Close"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Options is the typed configuration of the plugin.
type Options struct {
	Path string `yaml:"path"`
}

// Plugin adapts an interpreted script to the plugin contract.
type Plugin struct {
	plugin.Base

	path    string
	caps    plugin.Capability
	process func() (bool, error)
	close   func() error
}

// Register installs the plugin factory.
func Register(reg *plugin.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(moduleID, func(env plugin.Env, opts plugin.Options) (plugin.Plugin, error) {
		var cfg Options
		if err := opts.Decode(&cfg); err != nil {
			return nil, err
		}
		return Load(cfg.Path, opts.Without("path"), env.Logger)
	})
}

// Load interprets the script at path and probes it for the plugin
// functions.
func Load(path string, opts plugin.Options, logger zerolog.Logger) (*Plugin, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("script: path is required")
	}
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	code, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", resolved, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("script: %s is empty", resolved)
	}
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(resolved); err != nil {
		return nil, fmt.Errorf("script: interpret %s: %w", resolved, err)
	}

	name := strings.TrimSuffix(filepath.Base(resolved), filepath.Ext(resolved))
	p := &Plugin{
		Base: plugin.NewBase(plugin.Info{
			ID:          moduleID,
			Name:        name,
			Description: resolved,
			Version:     moduleVersion,
		}),
		path: resolved,
	}

	if fn, ok := lookup(i, initFuncName); ok {
		if err := callInit(fn, opts); err != nil {
			return nil, fmt.Errorf("script: %s: %w", resolved, err)
		}
	}
	if fn, ok := lookup(i, processFuncName); ok {
		process, err := adaptProcess(fn)
		if err != nil {
			return nil, fmt.Errorf("script: %s: %w", resolved, err)
		}
		p.process = process
		p.caps |= plugin.CapProcess
	}
	if fn, ok := lookup(i, closeFuncName); ok {
		closeFn, err := adaptClose(fn)
		if err != nil {
			return nil, fmt.Errorf("script: %s: %w", resolved, err)
		}
		p.close = closeFn
		p.caps |= plugin.CapClose
	}
	logger.Info().Str("path", resolved).Stringer("capabilities", p.caps).Msg("script loaded")
	return p, nil
}

// Path returns the absolute script path.
func (p *Plugin) Path() string {
	return p.path
}

// Capabilities implements plugin.CapabilityReporter.
func (p *Plugin) Capabilities() plugin.Capability {
	return p.caps
}

// Process implements plugin.Processor.
func (p *Plugin) Process() (bool, error) {
	if p.process == nil {
		return false, nil
	}
	return p.process()
}

// Close implements plugin.Closer.
func (p *Plugin) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func lookup(i *interp.Interpreter, name string) (reflect.Value, bool) {
	value, err := i.Eval(name)
	if err != nil || !value.IsValid() || value.Kind() != reflect.Func || value.IsNil() {
		return reflect.Value{}, false
	}
	return value, true
}

func callInit(fn reflect.Value, opts plugin.Options) error {
	t := fn.Type()
	if t.NumIn() != 1 || t.In(0).Kind() != reflect.Map || t.NumOut() > 1 {
		return fmt.Errorf("%s must be func(map[string]any) error", initFuncName)
	}
	if t.NumOut() == 1 && !t.Out(0).Implements(errorType) {
		return fmt.Errorf("%s must return error", initFuncName)
	}
	arg := reflect.ValueOf(map[string]any(opts.Clone()))
	if !arg.Type().AssignableTo(t.In(0)) {
		return fmt.Errorf("%s must accept map[string]any", initFuncName)
	}
	results := fn.Call([]reflect.Value{arg})
	if len(results) == 1 {
		return asError(results[0])
	}
	return nil
}

func adaptProcess(fn reflect.Value) (func() (bool, error), error) {
	t := fn.Type()
	if t.NumIn() != 0 {
		return nil, fmt.Errorf("%s must not take arguments", processFuncName)
	}
	switch {
	case t.NumOut() == 0:
		return func() (bool, error) {
			fn.Call(nil)
			return true, nil
		}, nil
	case t.NumOut() == 1 && t.Out(0).Kind() == reflect.Bool:
		return func() (bool, error) {
			return fn.Call(nil)[0].Bool(), nil
		}, nil
	case t.NumOut() == 2 && t.Out(0).Kind() == reflect.Bool && t.Out(1).Implements(errorType):
		return func() (bool, error) {
			results := fn.Call(nil)
			return results[0].Bool(), asError(results[1])
		}, nil
	}
	return nil, fmt.Errorf("%s must return bool, (bool, error) or nothing", processFuncName)
}

func adaptClose(fn reflect.Value) (func() error, error) {
	t := fn.Type()
	if t.NumIn() != 0 {
		return nil, fmt.Errorf("%s must not take arguments", closeFuncName)
	}
	switch {
	case t.NumOut() == 0:
		return func() error {
			fn.Call(nil)
			return nil
		}, nil
	case t.NumOut() == 1 && t.Out(0).Implements(errorType):
		return func() error {
			return asError(fn.Call(nil)[0])
		}, nil
	}
	return nil, fmt.Errorf("%s must return error or nothing", closeFuncName)
}

func asError(value reflect.Value) error {
	if !value.IsValid() || value.IsNil() {
		return nil
	}
	if err, ok := value.Interface().(error); ok {
		return err
	}
	return fmt.Errorf("returned non-error value %v", value.Interface())
}
