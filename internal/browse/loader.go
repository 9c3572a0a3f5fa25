package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/shiftline/internal/model"
)

// ErrCancelled is returned when the user interrupts a load.
var ErrCancelled = errors.New("cancelled")

type runDoneMsg struct {
	summary model.Summary
	err     error
}

type loaderModel struct {
	employer string
	run      func(ctx context.Context) (model.Summary, error)
	ctx      context.Context
	cancel   context.CancelFunc
	spinner  spinner.Model
	summary  model.Summary
	err      error
	done     bool
}

func newLoader(ctx context.Context, employer string, run func(ctx context.Context) (model.Summary, error)) loaderModel {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{employer: employer, run: run, ctx: ctx, cancel: cancel, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doRun(), m.spinner.Tick)
}

func (m loaderModel) doRun() tea.Cmd {
	run, ctx := m.run, m.ctx
	return func() tea.Msg {
		s, err := run(ctx)
		return runDoneMsg{summary: s, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.summary = msg.summary
		if m.err == nil {
			m.err = msg.err
		}
		m.done = true
		m.cancel()
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = ErrCancelled
			m.cancel()
			// Wait for the run to return its partial summary.
			return m, nil
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	if m.err != nil {
		return fmt.Sprintf("%s Stopping %s...\n", m.spinner.View(), m.employer)
	}
	return fmt.Sprintf("%s Dry-running %s...\n", m.spinner.View(), m.employer)
}

// RunLoader shows a spinner while run executes. It renders inline (no alt
// screen). Ctrl+C cancels run's context.
func RunLoader(ctx context.Context, employer string, run func(ctx context.Context) (model.Summary, error)) (model.Summary, error) {
	p := tea.NewProgram(newLoader(ctx, employer, run))
	result, err := p.Run()
	if err != nil {
		return model.Summary{}, err
	}
	final := result.(loaderModel)
	return final.summary, final.err
}
