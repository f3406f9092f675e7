package cli

import (
	"fmt"
	"os"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme holds the color scheme for interactive output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// resultMsg carries the finished request result.
type resultMsg struct {
	text string
	err  error
}

// waitModel is the bubbletea model shown while a request is in flight.
type waitModel struct {
	spinner spinner.Model
	label   string
	theme   Theme
	run     func() (string, error)

	text     string
	err      error
	quitting bool
}

func newWaitModel(label string, run func() (string, error)) waitModel {
	return waitModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		label:   label,
		theme:   defaultTheme,
		run:     run,
	}
}

// Init starts the spinner and kicks off the request.
func (m waitModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			text, err := m.run()
			return resultMsg{text: text, err: err}
		},
	)
}

// Update handles messages and returns the updated model.
func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case resultMsg:
		m.text = msg.text
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the waiting line.
func (m waitModel) View() tea.View {
	if m.quitting || m.err != nil || m.text != "" {
		return tea.NewView("")
	}
	status := m.theme.statusStyle().Render(m.label)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to abort")
	return tea.NewView(fmt.Sprintf("%s %s  %s\n", m.spinner.View(), status, hint))
}

// runWithSpinner runs the request with a spinner on interactive
// terminals; without a TTY it just blocks on the request.
func runWithSpinner(label string, run func() (string, error)) (string, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return run()
	}

	p := tea.NewProgram(newWaitModel(label, run))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(waitModel)
	if !ok {
		return "", fmt.Errorf("unexpected final model type %T", finalModel)
	}
	if m.quitting {
		return "", fmt.Errorf("aborted")
	}
	return m.text, m.err
}
