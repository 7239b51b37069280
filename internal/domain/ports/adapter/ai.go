package adapter

import "context"

// Message represents one chat message sent to the text-generation API.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// TextGenAdapter is the port for the external text-generation API.
type TextGenAdapter interface {
	// Chat performs one non-streaming completion call and returns the first
	// choice's message content.
	Chat(ctx context.Context, model string, messages []Message) (string, error)
}
