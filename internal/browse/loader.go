package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/marketbrief/internal/model"
)

// ErrCancelled is returned by RunLoader when the user interrupts the load.
var ErrCancelled = errors.New("cancelled")

// Data is everything the browser needs from the store.
type Data struct {
	Jobs  []model.Job
	Names map[string]string
}

type loadDoneMsg struct {
	data Data
	err  error
}

type loaderModel struct {
	label   string
	ctx     context.Context
	loadFn  func(ctx context.Context) (Data, error)
	spinner spinner.Model
	result  Data
	err     error
	done    bool
}

func newLoader(ctx context.Context, label string, loadFn func(ctx context.Context) (Data, error)) loaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{label: label, ctx: ctx, loadFn: loadFn, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doLoad(), m.spinner.Tick)
}

func (m loaderModel) doLoad() tea.Cmd {
	ctx, loadFn := m.ctx, m.loadFn
	return func() tea.Msg {
		data, err := loadFn(ctx)
		return loadDoneMsg{data: data, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		m.result = msg.data
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Loading %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while loadFn runs. It renders inline (no alt screen).
func RunLoader(ctx context.Context, label string, loadFn func(ctx context.Context) (Data, error)) (Data, error) {
	p := tea.NewProgram(newLoader(ctx, label, loadFn))
	result, err := p.Run()
	if err != nil {
		return Data{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
