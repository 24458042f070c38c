package plugins

import (
	"github.com/kingrea/topsy/internal/plugin"
	"github.com/kingrea/topsy/internal/plugins/notes"
	"github.com/kingrea/topsy/internal/plugins/script"
)

// RegisterBuiltins installs all of the built-in plugin factories into the
// provided registry.
func RegisterBuiltins(reg *plugin.Registry) {
	if reg == nil {
		return
	}
	notes.Register(reg)
	script.Register(reg)
}

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry() *plugin.Registry {
	reg := plugin.NewRegistry()
	RegisterBuiltins(reg)
	return reg
}
