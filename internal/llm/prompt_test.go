package llm

import (
	"testing"

	"github.com/hyperjump/scholar/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessages(t *testing.T) {
	msgs := BuildMessages("What replaces recurrence?", []models.Chunk{
		{Content: "Attention is all you need."},
		{Content: "Self-attention replaces recurrence."},
	})
	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: "You are a helpful assistant. Use the context below."},
		{Role: RoleUser, Content: "Context:\nAttention is all you need.\n\nSelf-attention replaces recurrence.\n\nQuestion: What replaces recurrence?"},
	}, msgs)
}

func TestBuildMessages_noChunks(t *testing.T) {
	msgs := BuildMessages("q", nil)
	assert.Equal(t, "Context:\n\n\nQuestion: q", msgs[1].Content)
}

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain answer", "plain answer"},
		{"<think>\nlet me see\n</think>\n\nSelf-attention.", "Self-attention."},
		{"<think>a</think>one <think>b</think>two", "one two"},
		{"  spaced  ", "spaced"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripReasoning(tt.in))
	}
}
