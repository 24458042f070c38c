package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved matches every ResolutionError.
	ErrUnresolved = errors.New("plugin: unresolved implementation")
	// ErrConstruction matches every ConstructionError.
	ErrConstruction = errors.New("plugin: construction failed")
)

// ResolutionError reports a configured module that no factory is registered
// for.
type ResolutionError struct {
	Module string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("plugin: unknown module %q", e.Module)
}

func (e *ResolutionError) Unwrap() error {
	return ErrUnresolved
}

// ConstructionError reports a factory that failed to build its plugin.
type ConstructionError struct {
	Module string
	Err    error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("plugin: construct %s: %v", e.Module, e.Err)
}

func (e *ConstructionError) Unwrap() []error {
	return []error{ErrConstruction, e.Err}
}

// FrameError reports a plugin that failed during Process or Close.
type FrameError struct {
	Plugin string
	Op     string
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("plugin: %s %s: %v", e.Plugin, e.Op, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
