package terminal

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"ChatGPT/internal/chatbot"
)

type doneMsg struct{ err error }

// spinnerModel animates until the wrapped work reports back, then clears itself
type spinnerModel struct {
	spinner spinner.Model
	label   string
	work    func() error
	done    bool
	err     error
}

func newSpinnerModel(label string, work func() error) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: spinner.Dot.Frames,
		FPS:    120 * time.Millisecond,
	}
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316"))
	return spinnerModel{spinner: sp, label: label, work: work}
}

func (m spinnerModel) Init() tea.Cmd {
	work := m.work
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return doneMsg{err: work()}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label
}

// Spinner shows an animated indicator on out while work runs.
// It never reads from stdin, so keyboard input stays with the line reader.
type Spinner struct {
	out io.Writer
}

// NewSpinner returns a spinner drawing to out
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

// Busy runs fn while the spinner animates, returning fn's error
func (s *Spinner) Busy(label string, fn func() error) error {
	p := tea.NewProgram(newSpinnerModel(label, fn),
		tea.WithInput(nil),
		tea.WithOutput(s.out),
	)
	final, err := p.Run()
	if err != nil {
		return err
	}
	return final.(spinnerModel).err
}

// NewIndicator picks the spinner when f is a terminal and no indicator otherwise
func NewIndicator(f *os.File) chatbot.Indicator {
	if term.IsTerminal(int(f.Fd())) {
		return NewSpinner(f)
	}
	return chatbot.Immediate{}
}
