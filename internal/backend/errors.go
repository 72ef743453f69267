package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyConversation        = errors.New("conversation is empty")
	ErrTransport                = errors.New("openai request could not be sent")
	ErrInvalidCredential        = errors.New("openai rejected the api key")
	ErrEmptyOrAmbiguousResponse = errors.New("openai returned empty or more than one response")
)

// RequestFailedError is returned for any non-200, non-401 response
type RequestFailedError struct {
	StatusCode int
	Status     string
	Body       []byte
}

// JSON decodes the body, reporting false when it is not valid JSON
func (e *RequestFailedError) JSON() (any, bool) {
	var v any
	if err := json.Unmarshal(e.Body, &v); err != nil {
		return nil, false
	}
	return v, true
}

func (e *RequestFailedError) Error() string {
	if v, ok := e.JSON(); ok {
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err == nil {
			return fmt.Sprintf("openai request failed (%s). response:\n%s", e.Status, pretty)
		}
	}
	return fmt.Sprintf("openai request failed (%s). response:\n%q", e.Status, e.Body)
}
