package plugin

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Options carries plugin-specific configuration exactly as declared.
type Options map[string]any

// Decode fills v (a pointer to a struct with yaml tags) from the options.
// Keys v does not declare are ignored.
func (o Options) Decode(v any) error {
	payload, err := yaml.Marshal(map[string]any(o))
	if err != nil {
		return fmt.Errorf("plugin: encode options: %w", err)
	}
	if err := yaml.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("plugin: decode options: %w", err)
	}
	return nil
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	if o == nil {
		return Options{}
	}
	clone := make(Options, len(o))
	for k, v := range o {
		clone[k] = v
	}
	return clone
}

// Without returns a copy without the named keys.
func (o Options) Without(keys ...string) Options {
	clone := o.Clone()
	for _, key := range keys {
		delete(clone, key)
	}
	return clone
}
