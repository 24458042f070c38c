package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kingrea/topsy/internal/overlay"
)

// Env carries host services into plugin factories.
type Env struct {
	Logger  zerolog.Logger
	Surface overlay.Surface
}

func (e Env) withDefaults() Env {
	if e.Surface == nil {
		e.Surface = overlay.NopSurface{}
	}
	return e
}

// Factory constructs a plugin from its options.
type Factory func(env Env, opts Options) (Plugin, error)

// Registry maintains known plugin factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register installs a plugin factory. Returns an error if the ID already exists.
func (r *Registry) Register(id string, factory Factory) error {
	if id == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if factory == nil {
		return fmt.Errorf("plugin: factory is required for %s", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("plugin: %s already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(id string, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs a plugin by ID. An unknown ID yields a
// *ResolutionError; a failing or panicking factory, a nil plugin, or invalid
// Info yields a *ConstructionError.
func (r *Registry) Resolve(id string, env Env, opts Options) (p Plugin, err error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, &ResolutionError{Module: id}
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			p = nil
			err = &ConstructionError{Module: id, Err: fmt.Errorf("panic: %v", recovered)}
		}
	}()
	p, err = factory(env.withDefaults(), opts.Clone())
	if err != nil {
		return nil, &ConstructionError{Module: id, Err: err}
	}
	if p == nil {
		return nil, &ConstructionError{Module: id, Err: fmt.Errorf("factory returned no plugin")}
	}
	if err := p.Info().Validate(); err != nil {
		return nil, &ConstructionError{Module: id, Err: err}
	}
	return p, nil
}

// IDs returns a sorted list of registered plugin identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
