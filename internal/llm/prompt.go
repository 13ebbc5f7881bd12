package llm

import (
	"regexp"
	"strings"

	"github.com/hyperjump/scholar/internal/models"
)

// SystemPrompt instructs the model to answer from the supplied context.
const SystemPrompt = "You are a helpful assistant. Use the context below."

// BuildMessages assembles the system and user turns for question, with the
// chunk contents joined by blank lines as context.
func BuildMessages(question string, chunks []models.Chunk) []Message {
	parts := make([]string, len(chunks))
	for i, ch := range chunks {
		parts[i] = ch.Content
	}
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: "Context:\n" + strings.Join(parts, "\n\n") + "\n\nQuestion: " + question},
	}
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripReasoning removes <think>...</think> blocks that reasoning models
// emit before their answer.
func StripReasoning(answer string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(answer, ""))
}
