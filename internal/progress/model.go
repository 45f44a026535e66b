// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress shows a terminal progress bar while a conversion runs.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/notesheet/internal/pipeline"
)

const (
	padding  = 2
	maxWidth = 60
)

// EventMsg reports a committed output page.
type EventMsg struct {
	Event pipeline.Event
}

// DoneMsg reports the end of the run.
type DoneMsg struct {
	Result pipeline.Result
	Err    error
}

// Styles holds the lipgloss styles used by the view.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the default view styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}
}

// Model is the bubbletea model of one conversion.
type Model struct {
	name   string
	cancel func()
	styles Styles
	quit   key.Binding

	bar        progress.Model
	done       int
	total      int
	last       pipeline.Event
	cancelling bool
	finished   bool
	result     pipeline.Result
	err        error
}

// New returns a model for converting name. cancel is called when the user
// interrupts the run; it may be nil.
func New(name string, cancel func()) Model {
	return Model{
		name:   name,
		cancel: cancel,
		styles: DefaultStyles(),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q", "esc"),
			key.WithHelp("q", "cancel"),
		),
		bar: progress.New(progress.WithGradient("#93C5FD", "#1D4ED8")),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-padding*2-4, maxWidth)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.quit) && !m.cancelling && !m.finished {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case EventMsg:
		m.last = msg.Event
		m.done = msg.Event.Pair + 1
		m.total = msg.Event.Pairs
		return m, nil

	case DoneMsg:
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Percent returns the completed fraction in [0, 1].
func (m Model) Percent() float64 {
	if m.total == 0 {
		if m.finished && m.err == nil {
			return 1
		}
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// Done reports whether the run has ended.
func (m Model) Done() bool { return m.finished }

// Outcome returns the result of an ended run.
func (m Model) Outcome() (pipeline.Result, error) { return m.result, m.err }

func (m Model) View() string {
	pad := strings.Repeat(" ", padding)
	var b strings.Builder

	b.WriteString("\n" + pad + m.styles.Title.Render("notesheet") + " " + m.name + "\n\n")
	b.WriteString(pad + m.bar.ViewAs(m.Percent()) + "\n\n")

	switch {
	case m.finished && m.err != nil:
		b.WriteString(pad + m.styles.Error.Render("failed: "+m.err.Error()) + "\n")
	case m.finished:
		b.WriteString(pad + m.styles.Success.Render(fmt.Sprintf("done: %d pages", m.result.Pages)) + "\n")
	case m.cancelling:
		b.WriteString(pad + m.styles.Muted.Render("cancelling...") + "\n")
	case m.total > 0:
		b.WriteString(pad + m.styles.Muted.Render(fmt.Sprintf("page %d of %d %s", m.done, m.total, pages(m.last))) +
			"  " + m.styles.Muted.Render(m.quit.Help().Key+" "+m.quit.Help().Desc) + "\n")
	default:
		b.WriteString(pad + m.styles.Muted.Render("opening...") + "\n")
	}
	return b.String()
}

// pages describes which source pages an event drew, 1-based.
func pages(e pipeline.Event) string {
	if e.Blank {
		return fmt.Sprintf("(source page %d + blank)", e.PrimaryPage+1)
	}
	return fmt.Sprintf("(source pages %d-%d)", e.PrimaryPage+1, e.SecondaryPage+1)
}
