package chatbot

import (
	"fmt"
	"io"

	"ChatGPT/internal/session"
)

// ScriptedInput replays a fixed list of lines, then reports io.EOF
type ScriptedInput struct {
	lines []string
	next  int
}

// NewScriptedInput creates an input source over lines
func NewScriptedInput(lines ...string) *ScriptedInput {
	return &ScriptedInput{lines: lines}
}

func (s *ScriptedInput) NextLine() (string, error) {
	if s.next >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.next]
	s.next++
	return line, nil
}

// Immediate runs work without any visual feedback
type Immediate struct{}

func (Immediate) Busy(_ string, fn func() error) error {
	return fn()
}

// PlainRenderer writes "role · content" lines
type PlainRenderer struct{}

func (PlainRenderer) Reply(w io.Writer, msg session.Message) {
	fmt.Fprintf(w, "%s · %s\n", msg.Role, msg.Content)
}
