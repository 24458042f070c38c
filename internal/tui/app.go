// internal/tui/app.go
//
// The overlay is a bubbletea program that acts as the frame host. Every tick
// it asks the plugin host to process one frame; plugins draw their panels on
// the Surface and receive whatever the user did since the previous tick.

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// FrameInterval is the delay between two frames.
const FrameInterval = time.Second / 30

// FrameHost is the part of plugin.Host the overlay drives.
type FrameHost interface {
	ProcessFrame() error
	CloseAll() error
}

type frameMsg time.Time

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogger sets the logger used for frame errors.
func WithLogger(logger zerolog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithFrameInterval overrides FrameInterval.
func WithFrameInterval(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.interval = d
		}
	}
}

// App is the overlay model.
type App struct {
	host     FrameHost
	surface  *Surface
	logger   zerolog.Logger
	interval time.Duration

	keys  keyMap
	help  help.Model
	input textinput.Model

	focus  int
	cursor int
	typing bool
	width  int

	status   string
	closed   bool
	closeErr error
}

// NewApp builds the overlay around a host whose plugins draw on surface.
func NewApp(host FrameHost, surface *Surface, opts ...AppOption) *App {
	input := textinput.New()
	input.Placeholder = "new item"
	input.Prompt = "+ "
	input.CharLimit = 256
	a := &App{
		host:     host,
		surface:  surface,
		logger:   zerolog.Nop(),
		interval: FrameInterval,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    input,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the overlay and blocks until the user quits. Plugins are closed
// exactly once on the way out, whichever way the program ends.
func Run(host FrameHost, surface *Surface, opts ...AppOption) error {
	app := NewApp(host, surface, opts...)
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	if closeErr := app.shutdown(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.tick()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if a.closed {
			return a, nil
		}
		a.frame()
		return a, a.tick()
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.Width = msg.Width
		return a, nil
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, a.quit()
		}
		if a.typing {
			return a, a.updateTyping(msg)
		}
		return a, a.updateBrowsing(msg)
	}
	return a, nil
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (a *App) frame() {
	a.surface.beginFrame()
	if err := a.host.ProcessFrame(); err != nil {
		a.status = err.Error()
	} else {
		a.status = ""
	}
	panels := a.surface.visible()
	if len(panels) == 0 {
		a.focus, a.cursor = 0, 0
		return
	}
	a.focus = clamp(a.focus, len(panels))
	a.cursor = clamp(a.cursor, len(panels[a.focus].panel.Rows))
	if !a.typing && a.input.Value() != panels[a.focus].panel.Draft {
		a.input.SetValue(panels[a.focus].panel.Draft)
	}
}

func (a *App) focused() *panelState {
	panels := a.surface.visible()
	if a.focus < 0 || a.focus >= len(panels) {
		return nil
	}
	return panels[a.focus]
}

func (a *App) updateBrowsing(msg tea.KeyMsg) tea.Cmd {
	st := a.focused()
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(msg, a.keys.Next):
		a.moveFocus(1)
	case key.Matches(msg, a.keys.Prev):
		a.moveFocus(-1)
	case st == nil:
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(st.panel.Rows)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Toggle):
		if a.cursor < len(st.panel.Rows) {
			a.surface.toggle(st.id, a.cursor)
		}
	case key.Matches(msg, a.keys.Delete):
		if a.cursor < len(st.panel.Rows) {
			a.surface.remove(st.id, a.cursor)
		}
	case key.Matches(msg, a.keys.Add):
		a.typing = true
		return a.input.Focus()
	}
	return nil
}

func (a *App) updateTyping(msg tea.KeyMsg) tea.Cmd {
	st := a.focused()
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.typing = false
		a.input.Blur()
		return nil
	case key.Matches(msg, a.keys.Submit):
		if st != nil {
			a.surface.submit(st.id, a.input.Value())
		}
		a.input.SetValue("")
		return nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if st != nil {
		a.surface.setDraft(st.id, a.input.Value())
	}
	return cmd
}

func (a *App) moveFocus(delta int) {
	n := len(a.surface.visible())
	if n == 0 {
		return
	}
	a.focus = (a.focus + delta + n) % n
	a.cursor = 0
	if st := a.focused(); st != nil {
		a.input.SetValue(st.panel.Draft)
	}
}

// quit runs one last frame so interactions queued since the previous tick
// reach the plugins before they are closed.
func (a *App) quit() tea.Cmd {
	if !a.closed {
		a.frame()
	}
	if err := a.shutdown(); err != nil {
		a.logger.Error().Err(err).Msg("closing plugins")
	}
	return tea.Quit
}

func (a *App) shutdown() error {
	if a.closed {
		return a.closeErr
	}
	a.closed = true
	a.closeErr = a.host.CloseAll()
	return a.closeErr
}

// View implements tea.Model.
func (a *App) View() string {
	panels := a.surface.visible()
	var blocks []string
	if len(panels) == 0 {
		blocks = append(blocks, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render("No lists loaded."))
	}
	for i, st := range panels {
		blocks = append(blocks, a.renderPanel(st, i == a.focus))
	}
	if a.status != "" {
		blocks = append(blocks, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render(a.status))
	}
	blocks = append(blocks, a.help.View(a.keys))
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (a *App) renderPanel(st *panelState, focused bool) string {
	border := lipgloss.Color("#444444")
	if focused {
		border = lipgloss.Color("#F5D547")
	}
	done := 0
	for _, row := range st.panel.Rows {
		if row.Checked {
			done++
		}
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F5D547")).
		Render(fmt.Sprintf("%s  %d/%d", st.panel.Title, done, len(st.panel.Rows)))

	lines := []string{title}
	for i, row := range st.panel.Rows {
		lines = append(lines, renderRow(row.Checked, row.Text, focused && !a.typing && i == a.cursor))
	}
	if focused {
		lines = append(lines, a.input.View())
	}
	width := 36
	if a.width > 4 {
		width = min(max(20, a.width-4), 72)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func renderRow(checked bool, text string, selected bool) string {
	box := "[ ]"
	style := lipgloss.NewStyle()
	if checked {
		box = "[x]"
		style = style.Faint(true).Strikethrough(true)
	}
	prefix := "  "
	if selected {
		prefix = "> "
		style = style.Foreground(lipgloss.Color("#5B8DEF"))
	}
	return prefix + style.Render(box+" "+text)
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
