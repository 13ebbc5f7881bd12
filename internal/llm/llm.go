// Package llm generates answers from retrieved chunks with a chat-completion model.
package llm

import (
	"context"
	"fmt"

	"github.com/hyperjump/scholar/internal/config"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatModel completes a conversation.
type ChatModel interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	ModelName() string
}

// New creates the chat model named by cfg.Provider. Groq and OpenAI share the
// OpenAI chat-completions protocol.
func New(cfg *config.LLMConfig) (ChatModel, error) {
	switch cfg.Provider {
	case "groq", "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: groq, openai)", cfg.Provider)
	}
}
