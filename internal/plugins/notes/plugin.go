package notes

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kingrea/topsy/internal/checklist"
	"github.com/kingrea/topsy/internal/config"
	"github.com/kingrea/topsy/internal/overlay"
	"github.com/kingrea/topsy/internal/plugin"
)

const (
	moduleID       = "notes"
	legacyModuleID = "topsy.plugins.notes"
	moduleVersion  = "1.0.0"
)

// ErrClosed is returned by Process once the plugin has been closed.
var ErrClosed = errors.New("notes: plugin closed")

// Options is the typed configuration of the plugin.
type Options struct {
	NotesDirectory string `yaml:"notes_directory"`
	Extension      string `yaml:"extension"`
	// CreateMissing creates notes_directory instead of failing when it does
	// not exist.
	CreateMissing bool `yaml:"create_missing"`
}

type state int

const (
	stateLoaded state = iota
	stateInteracting
	stateClosed
)

// Plugin manages the checklists of one notes directory.
type Plugin struct {
	plugin.Base

	dir     string
	codec   *checklist.Codec
	surface overlay.Surface
	logger  zerolog.Logger

	docs   []*checklist.Document
	drafts []string
	// shown holds the item references published on the previous frame, per
	// document, so that row indices reported by the surface resolve to the
	// items the user actually saw.
	shown [][]*checklist.Item
	state state
}

// Option customizes plugin construction.
type Option func(*Plugin)

// WithSurface sets where panels are drawn.
func WithSurface(surface overlay.Surface) Option {
	return func(p *Plugin) {
		if surface != nil {
			p.surface = surface
		}
	}
}

// WithLogger sets the plugin logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// Register installs the plugin factory under its id and legacy module path.
func Register(reg *plugin.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(moduleID, factory)
	reg.MustRegister(legacyModuleID, factory)
}

func factory(env plugin.Env, opts plugin.Options) (plugin.Plugin, error) {
	var cfg Options
	if err := opts.Decode(&cfg); err != nil {
		return nil, err
	}
	return New(cfg, WithSurface(env.Surface), WithLogger(env.Logger))
}

// New resolves the notes directory and loads every document in it. A
// missing directory is an error unless CreateMissing is set; a document
// that cannot be parsed fails the whole load.
func New(opts Options, options ...Option) (*Plugin, error) {
	if opts.NotesDirectory == "" {
		return nil, fmt.Errorf("notes: notes_directory is required")
	}
	dir, err := config.ExpandPath(opts.NotesDirectory)
	if err != nil {
		return nil, fmt.Errorf("notes: %w", err)
	}
	if err := ensureDir(dir, opts.CreateMissing); err != nil {
		return nil, err
	}
	p := &Plugin{
		Base: plugin.NewBase(plugin.Info{
			ID:          moduleID,
			Name:        "Notes",
			Description: "Checklists kept in markdown files.",
			Version:     moduleVersion,
		}),
		dir:     dir,
		codec:   checklist.NewCodec(),
		surface: overlay.NopSurface{},
		logger:  zerolog.Nop(),
	}
	for _, option := range options {
		option(p)
	}
	ext := opts.Extension
	if ext == "" {
		ext = checklist.DefaultExtension
	}
	docs, err := p.codec.LoadDir(dir, ext)
	if err != nil {
		return nil, fmt.Errorf("notes: load %s: %w", dir, err)
	}
	p.docs = docs
	p.drafts = make([]string, len(docs))
	p.shown = make([][]*checklist.Item, len(docs))
	p.logger.Info().Str("dir", dir).Int("documents", len(docs)).Msg("notes loaded")
	return p, nil
}

func ensureDir(dir string, create bool) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("notes: %s is not a directory", dir)
	case os.IsNotExist(err) && create:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("notes: create %s: %w", dir, err)
		}
		return nil
	default:
		return fmt.Errorf("notes: notes directory: %w", err)
	}
}

// Dir returns the absolute notes directory.
func (p *Plugin) Dir() string {
	return p.dir
}

// Documents returns the loaded documents in directory-scan order.
func (p *Plugin) Documents() []*checklist.Document {
	return p.docs
}

// Process publishes one panel per document and applies the interactions
// the surface reported for it.
func (p *Plugin) Process() (bool, error) {
	if p.state == stateClosed {
		return false, ErrClosed
	}
	p.state = stateInteracting
	for i, doc := range p.docs {
		published := append([]*checklist.Item(nil), doc.Items...)
		input := p.surface.Panel(doc.Path, p.panel(i))
		p.apply(i, input)
		p.shown[i] = published
	}
	return true, nil
}

// Close writes every document back to its file. Every document is
// attempted; failures are joined.
func (p *Plugin) Close() error {
	if p.state == stateClosed {
		return nil
	}
	p.state = stateClosed
	var errs []error
	for _, doc := range p.docs {
		if err := p.codec.Save(doc); err != nil {
			p.logger.Error().Err(err).Str("path", doc.Path).Msg("save failed")
			errs = append(errs, err)
			continue
		}
		p.logger.Debug().Str("path", doc.Path).Int("items", len(doc.Items)).Msg("saved")
	}
	return errors.Join(errs...)
}

func (p *Plugin) panel(i int) overlay.Panel {
	doc := p.docs[i]
	rows := make([]overlay.Row, len(doc.Items))
	for j, item := range doc.Items {
		rows[j] = overlay.Row{Checked: item.Checked, Text: item.Text}
	}
	return overlay.Panel{Title: doc.Title, Rows: rows, Draft: p.drafts[i]}
}

func (p *Plugin) apply(i int, input overlay.Input) {
	doc := p.docs[i]
	for _, idx := range input.Toggled {
		if item := p.resolve(i, idx, "toggle"); item != nil {
			doc.Toggle(item)
		}
	}
	var doomed []*checklist.Item
	for _, idx := range input.Deleted {
		if item := p.resolve(i, idx, "delete"); item != nil {
			doomed = append(doomed, item)
		}
	}
	doc.Remove(doomed...)

	p.drafts[i] = input.Draft
	if !input.Submitted {
		return
	}
	if _, err := doc.Append(input.Draft); err != nil {
		p.logger.Debug().Err(err).Str("path", doc.Path).Msg("ignored new item")
		return
	}
	p.drafts[i] = ""
}

func (p *Plugin) resolve(doc, idx int, op string) *checklist.Item {
	shown := p.shown[doc]
	if idx < 0 || idx >= len(shown) {
		p.logger.Warn().Str("path", p.docs[doc].Path).Str("op", op).Int("row", idx).Msg("row out of range")
		return nil
	}
	return shown[idx]
}
