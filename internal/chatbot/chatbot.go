package chatbot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ChatGPT/internal/session"
)

const busyLabel = "computing ..."

// Completer produces the next assistant message for a conversation
type Completer interface {
	Complete(ctx context.Context, messages []session.Message) (session.Message, error)
}

// InputSource yields one line of user input per call
type InputSource interface {
	NextLine() (string, error)
}

// Indicator shows that work is in progress while fn runs
type Indicator interface {
	Busy(label string, fn func() error) error
}

// Renderer prints an assistant reply
type Renderer interface {
	Reply(w io.Writer, msg session.Message)
}

// ChatBot alternates between reading user input and waiting for a completion
type ChatBot struct {
	completer Completer
	input     InputSource
	indicator Indicator
	renderer  Renderer
	out       io.Writer
	logger    *slog.Logger
	session   *session.Session
}

// NewChatBot creates a ChatBot with a fresh session
func NewChatBot(completer Completer, input InputSource, indicator Indicator, renderer Renderer, out io.Writer, logger *slog.Logger) *ChatBot {
	sess := session.New()
	logger.Info("created new session", "session_id", sess.ID)
	return &ChatBot{
		completer: completer,
		input:     input,
		indicator: indicator,
		renderer:  renderer,
		out:       out,
		logger:    logger.With("session_id", sess.ID),
		session:   sess,
	}
}

// Session returns the conversation owned by the bot
func (cb *ChatBot) Session() *session.Session {
	return cb.session
}

// Run drives the conversation until input or a completion fails.
// A non-empty initialPrompt is used as the first user message instead of asking for one.
func (cb *ChatBot) Run(ctx context.Context, initialPrompt string) error {
	prompt := strings.TrimSpace(initialPrompt)
	for {
		if prompt == "" {
			line, err := cb.readLine()
			if err != nil {
				return err
			}
			prompt = line
		}

		if _, err := cb.Exchange(ctx, prompt); err != nil {
			return err
		}
		prompt = ""
	}
}

// Exchange appends a user message, waits for the reply, appends and prints it.
// On failure the user message stays in the session and nothing else is appended.
func (cb *ChatBot) Exchange(ctx context.Context, userText string) (session.Message, error) {
	cb.session.Append(session.UserMessage(userText))
	messages := cb.session.Messages()

	var reply session.Message
	err := cb.indicator.Busy(busyLabel, func() error {
		var err error
		reply, err = cb.completer.Complete(ctx, messages)
		return err
	})
	if err != nil {
		cb.logger.Error("failed to complete conversation", "messages", len(messages), "error", err)
		return session.Message{}, fmt.Errorf("failed to get a reply: %w", err)
	}

	cb.session.Append(reply)
	cb.logger.Info("received reply", "messages", cb.session.Len())
	cb.renderer.Reply(cb.out, reply)
	return reply, nil
}

// readLine skips blank lines
func (cb *ChatBot) readLine() (string, error) {
	for {
		line, err := cb.input.NextLine()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}
