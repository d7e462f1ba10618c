// Package progress shows a spinner on a terminal while a call is in flight.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // Blue

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Model is the bubbletea model for the waiting spinner.
type Model struct {
	spinner spinner.Model
	label   string
	start   time.Time
	now     time.Time
	done    bool
	err     error
}

// doneMsg signals that the wrapped call returned.
type doneMsg struct{ err error }

// tickMsg fires every second to refresh the elapsed time.
type tickMsg time.Time

// NewModel creates a spinner model with the given label.
func NewModel(label string, start time.Time) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		spinner: s,
		label:   label,
		start:   start,
		now:     start,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner line. It is empty once the call is done so the
// line is cleared before the result is printed.
func (m Model) View() string {
	if m.done {
		return ""
	}
	elapsed := m.now.Sub(m.start).Truncate(time.Second)
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), labelStyle.Render(m.label), dimStyle.Render(elapsed.String()))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run calls fn while a spinner labelled label is drawn on w. fn's error is
// returned unchanged.
func Run(ctx context.Context, w io.Writer, label string, fn func(context.Context) error) error {
	p := tea.NewProgram(
		NewModel(label, time.Now()),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx)
		errCh <- err
		p.Send(doneMsg{err: err})
	}()

	// The call's error wins over any spinner failure.
	_, _ = p.Run()
	return <-errCh
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isTerminal(f)
}
