// SPDX-License-Identifier: MIT
//
// Package tui is the interactive terminal viewer for a Session's graphs.
package tui

import (
	"context"
	"fmt"

	"dspview/internal/graph"
	"dspview/internal/render"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A40000")).
			Bold(true)
)

// chromeHeight is the rows around the viewport: title, blank line, help.
const chromeHeight = 3

var keys = struct {
	quit, up, down, gate, wider, narrower key.Binding
}{
	quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	up:       key.NewBinding(key.WithKeys("up", "k")),
	down:     key.NewBinding(key.WithKeys("down", "j")),
	gate:     key.NewBinding(key.WithKeys("g")),
	wider:    key.NewBinding(key.WithKeys("+", "=")),
	narrower: key.NewBinding(key.WithKeys("-")),
}

// Session is the part of engine.Session the viewer drives.
type Session interface {
	Run(ctx context.Context) error
	Graphs(width int) ([]graph.Graph, error)
	GateEnabled() bool
	EnableGate()
	DisableGate()
	Cutoff() int
	SetCutoff(bins int)
}

// graphsMsg carries freshly reduced graphs.
type graphsMsg struct {
	graphs []graph.Graph
}

type errMsg struct {
	err error
}

// Model is the Bubble Tea model listing the four graphs.
type Model struct {
	session  Session
	width    int
	graphs   []graph.Graph
	selected int
	viewport viewport.Model
	ready    bool
	err      error
}

// NewModel creates a viewer over session. width is the column count used
// until the terminal reports its size.
func NewModel(session Session, width int) Model {
	return Model{session: session, width: width}
}

// Init runs the pipeline and reduces the graphs.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

// refresh reruns the session and reduces to the current width.
func (m Model) refresh() tea.Cmd {
	session, width := m.session, m.width
	return func() tea.Msg {
		if err := session.Run(context.Background()); err != nil {
			return errMsg{err}
		}
		graphs, err := session.Graphs(width)
		if err != nil {
			return errMsg{err}
		}
		return graphsMsg{graphs}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		if msg.Width > 0 && msg.Width != m.width {
			m.width = msg.Width
			cmds = append(cmds, m.refresh())
		}
		m.setContent()

	case graphsMsg:
		m.graphs = msg.graphs
		m.err = nil
		m.selected = min(m.selected, max(len(m.graphs)-1, 0))
		m.setContent()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit

		case key.Matches(msg, keys.up):
			if m.selected > 0 {
				m.selected--
				m.setContent()
			}

		case key.Matches(msg, keys.down):
			if m.selected < len(m.graphs)-1 {
				m.selected++
				m.setContent()
			}

		case key.Matches(msg, keys.gate):
			if m.session.GateEnabled() {
				m.session.DisableGate()
			} else {
				m.session.EnableGate()
			}
			cmds = append(cmds, m.refresh())

		case key.Matches(msg, keys.wider):
			m.session.SetCutoff(m.session.Cutoff() + 1)
			cmds = append(cmds, m.refresh())

		case key.Matches(msg, keys.narrower):
			m.session.SetCutoff(m.session.Cutoff() - 1)
			cmds = append(cmds, m.refresh())
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) setContent() {
	if !m.ready || len(m.graphs) == 0 {
		return
	}
	m.viewport.SetContent(render.RenderAll(m.graphs, m.width, m.viewport.Height, m.selected))
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	gate := "off"
	if m.session.GateEnabled() {
		gate = fmt.Sprintf("bins < %d", m.session.Cutoff())
	}
	title := titleStyle.Render(fmt.Sprintf("Spectral round trip, gate %s", gate))
	help := infoStyle.Render("↑/↓: Select • g: Toggle gate • +/-: Cutoff • q: Quit")

	if m.err != nil {
		help = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, m.viewport.View(), help)
}

// Selected returns the index of the highlighted graph.
func (m Model) Selected() int { return m.selected }

// Run launches the viewer and blocks until the user quits.
func Run(session Session, width int) error {
	p := tea.NewProgram(
		NewModel(session, width),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
