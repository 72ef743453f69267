package session_test

import (
	"encoding/json"
	"testing"

	"ChatGPT/internal/session"
)

func TestMessage_JSONRoundTrip(t *testing.T) {
	for _, msg := range []session.Message{
		{Role: session.RoleUser, Content: "hello"},
		{Role: session.RoleAssistant, Content: "multi\nline \"quoted\" ünïcode"},
		{Role: session.RoleSystem, Content: ""},
	} {
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("Marshal(%+v): %v", msg, err)
		}
		var got session.Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got != msg {
			t.Errorf("round trip = %+v, want %+v", got, msg)
		}
	}
}

func TestMessage_WireFieldNames(t *testing.T) {
	data, err := json.Marshal(session.Message{Role: session.RoleAssistant, Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"role":"assistant","content":"hi"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestRole_UnmarshalRejectsUnknown(t *testing.T) {
	tests := []string{`"tool"`, `"User"`, `""`, `7`}
	for _, raw := range tests {
		var r session.Role
		if err := json.Unmarshal([]byte(raw), &r); err == nil {
			t.Errorf("Unmarshal(%s) succeeded with %q, want error", raw, r)
		}
	}
}

func TestSession_AppendOnly(t *testing.T) {
	s := session.New()
	if s.ID == "" {
		t.Fatal("ID is empty")
	}
	s.Append(session.UserMessage("one"))
	s.Append(session.Message{Role: session.RoleAssistant, Content: "two"})

	msgs := s.Messages()
	if len(msgs) != 2 || s.Len() != 2 {
		t.Fatalf("len = %d/%d, want 2", len(msgs), s.Len())
	}

	// Mutating the returned slice must not leak back into the session.
	msgs[0].Content = "changed"
	if got := s.Messages()[0].Content; got != "one" {
		t.Errorf("Messages()[0].Content = %q, want %q", got, "one")
	}
}
