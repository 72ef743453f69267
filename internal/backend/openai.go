package backend

import "ChatGPT/internal/session"

// OpenAIRequest represents the request body for the chat completions endpoint
type OpenAIRequest struct {
	Messages []session.Message `json:"messages"`
	Model    string            `json:"model"`
}

// OpenAIChoice wraps one candidate reply
type OpenAIChoice struct {
	Index        int             `json:"index"`
	Message      session.Message `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// OpenAIResponse represents a successful chat completions response
type OpenAIResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []OpenAIChoice         `json:"choices"`
	Usage   map[string]interface{} `json:"usage"`
}
