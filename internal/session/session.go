package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// UnmarshalJSON rejects roles outside the closed set
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	role := Role(s)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", s)
	}
	*r = role
	return nil
}

// Message represents a single chat message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message authored by the user
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Session represents a chat session. Messages are only ever appended.
type Session struct {
	ID        string
	StartTime time.Time
	messages  []Message
}

// New creates an empty session
func New() *Session {
	return &Session{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
	}
}

// Append adds a message to the end of the conversation
func (s *Session) Append(msg Message) {
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the conversation in order
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the conversation
func (s *Session) Len() int {
	return len(s.messages)
}
