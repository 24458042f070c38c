package plugin

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kingrea/topsy/internal/config"
)

type entry struct {
	index     int
	module    string
	plugin    Plugin
	caps      Capability
	processor Processor
	closer    Closer
	lastErr   string
}

// Host owns the configured plugins and drives them once per frame and once
// at shutdown. It is not safe for concurrent use; the frame host calls it
// from a single goroutine.
type Host struct {
	entries []*entry
	logger  zerolog.Logger
	frames  uint64
	closed  bool
}

// NewHost constructs every configured plugin in order. Any resolution or
// construction failure aborts startup: the plugins built so far are
// discarded without being run or closed.
func NewHost(reg *Registry, env Env, configs []config.PluginConfig) (*Host, error) {
	if reg == nil {
		return nil, fmt.Errorf("plugin: registry is required")
	}
	host := &Host{logger: env.Logger}
	for i, cfg := range configs {
		p, err := reg.Resolve(cfg.Module, env, Options(cfg.Options))
		if err != nil {
			return nil, fmt.Errorf("plugins[%d]: %w", i, err)
		}
		caps := Capabilities(p)
		e := &entry{index: i, module: cfg.Module, plugin: p, caps: caps}
		if caps.Has(CapProcess) {
			e.processor = p.(Processor)
		}
		if caps.Has(CapClose) {
			e.closer = p.(Closer)
		}
		host.entries = append(host.entries, e)
		env.Logger.Info().
			Int("index", i).
			Str("module", cfg.Module).
			Str("plugin", p.Info().ID).
			Stringer("capabilities", caps).
			Msg("plugin loaded")
	}
	return host, nil
}

// Plugins returns the plugins in dispatch order.
func (h *Host) Plugins() []Plugin {
	plugins := make([]Plugin, len(h.entries))
	for i, e := range h.entries {
		plugins[i] = e.plugin
	}
	return plugins
}

// Frames reports how many frames have been processed.
func (h *Host) Frames() uint64 {
	return h.frames
}

// Closed reports whether CloseAll has run.
func (h *Host) Closed() bool {
	return h.closed
}

// ProcessFrame calls Process on every plugin that supports it, in order. A
// failing or panicking plugin does not stop the others; the failures are
// logged and returned joined. After CloseAll it does nothing.
func (h *Host) ProcessFrame() error {
	if h.closed {
		return nil
	}
	h.frames++
	var errs []error
	for _, e := range h.entries {
		if e.processor == nil {
			continue
		}
		processor := e.processor
		err := h.dispatch(e, "process", func() error {
			_, err := processor.Process()
			return err
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CloseAll calls Close on every plugin that supports it, in order, even when
// an earlier one fails. Only the first call has any effect.
func (h *Host) CloseAll() error {
	if h.closed {
		return nil
	}
	h.closed = true
	var errs []error
	for _, e := range h.entries {
		if e.closer == nil {
			continue
		}
		e.lastErr = ""
		if err := h.dispatch(e, "close", e.closer.Close); err != nil {
			errs = append(errs, err)
		}
	}
	h.logger.Info().Uint64("frames", h.frames).Int("failures", len(errs)).Msg("plugins closed")
	return errors.Join(errs...)
}

// dispatch runs fn for e, converting errors and panics into a *FrameError.
// Repeated identical failures are only logged once.
func (h *Host) dispatch(e *entry, op string, fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
		if err == nil {
			if e.lastErr != "" {
				h.logger.Info().Int("index", e.index).Str("module", e.module).Str("op", op).Msg("plugin recovered")
				e.lastErr = ""
			}
			return
		}
		err = &FrameError{Plugin: e.plugin.Info().ID, Op: op, Err: err}
		if msg := err.Error(); msg != e.lastErr {
			h.logger.Error().
				Err(err).
				Int("index", e.index).
				Str("module", e.module).
				Str("op", op).
				Uint64("frame", h.frames).
				Msg("plugin failed")
			e.lastErr = msg
		}
	}()
	return fn()
}
