// Package terminal implements the interactive surface: prompts, masked secret entry,
// the busy spinner and reply rendering.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"ChatGPT/internal/session"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

// Terminal reads lines from in and writes prompts to out
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 when in is not a file
}

// New wraps the given streams
func New(in io.Reader, out io.Writer) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Terminal{in: bufio.NewReader(in), out: out, fd: fd}
}

// IsTerminal reports whether input comes from an interactive terminal
func (t *Terminal) IsTerminal() bool {
	return t.fd >= 0 && term.IsTerminal(t.fd)
}

// NextLine prompts for and returns one line of user input
func (t *Terminal) NextLine() (string, error) {
	fmt.Fprint(t.out, promptStyle.Render("user")+" › ")
	return t.readLine()
}

// ReadSecret prompts until validate accepts the entered value.
// Input is not echoed when reading from a terminal.
func (t *Terminal) ReadSecret(prompt string, validate func(string) error) (string, error) {
	for {
		fmt.Fprint(t.out, promptStyle.Render(prompt)+" › ")

		var value string
		var err error
		if t.IsTerminal() {
			var raw []byte
			raw, err = term.ReadPassword(t.fd)
			fmt.Fprintln(t.out)
			value = strings.TrimSpace(string(raw))
		} else {
			value, err = t.readLine()
		}
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}

		if err := validate(value); err != nil {
			fmt.Fprintln(t.out, errorStyle.Render("✘ "+err.Error()))
			continue
		}
		return value, nil
	}
}

// Info prints an informational line
func (t *Terminal) Info(format string, args ...any) {
	fmt.Fprintf(t.out, "info: "+format+"\n", args...)
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Renderer prints replies as "🤖chatgpt · content" with a bold label
type Renderer struct{}

func (Renderer) Reply(w io.Writer, msg session.Message) {
	fmt.Fprintf(w, "%s · %s\n", labelStyle.Render("🤖chatgpt"), msg.Content)
}
