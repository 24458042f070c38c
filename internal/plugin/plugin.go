package plugin

import "fmt"

// Info describes a plugin instance.
type Info struct {
	ID          string
	Name        string
	Description string
	Version     string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("plugin: name is required for %s", i.ID)
	}
	if i.Version == "" {
		return fmt.Errorf("plugin: version is required for %s", i.ID)
	}
	return nil
}

// Plugin is implemented by every overlay plugin. Its behaviour comes from the
// optional Processor and Closer capabilities; a plugin with neither is inert.
type Plugin interface {
	Info() Info
}

// Processor is implemented by plugins that do work every frame. The boolean
// result is reserved; the host only records it.
type Processor interface {
	Process() (bool, error)
}

// Closer is implemented by plugins that need a shutdown pass. The host calls
// Close exactly once.
type Closer interface {
	Close() error
}

// CapabilityReporter narrows the capability set of plugins that only learn
// what they support at runtime.
type CapabilityReporter interface {
	Capabilities() Capability
}

// Capability is a set of optional plugin methods.
type Capability uint8

const (
	CapProcess Capability = 1 << iota
	CapClose

	CapNone Capability = 0
)

// Has reports whether every capability in want is present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

func (c Capability) String() string {
	switch c {
	case CapNone:
		return "none"
	case CapProcess:
		return "process"
	case CapClose:
		return "close"
	case CapProcess | CapClose:
		return "process,close"
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

// Capabilities reports what p can do.
func Capabilities(p Plugin) Capability {
	if p == nil {
		return CapNone
	}
	caps := CapNone
	if _, ok := p.(Processor); ok {
		caps |= CapProcess
	}
	if _, ok := p.(Closer); ok {
		caps |= CapClose
	}
	if reporter, ok := p.(CapabilityReporter); ok {
		caps &= reporter.Capabilities()
	}
	return caps
}

// Base provides the identity half of a plugin.
type Base struct {
	info Info
}

// NewBase seeds the helper with plugin info.
func NewBase(info Info) Base {
	return Base{info: info}
}

// Info implements Plugin.Info.
func (b *Base) Info() Info {
	return b.info
}
