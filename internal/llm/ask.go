package llm

import (
	"context"
	"fmt"

	"github.com/hyperjump/scholar/internal/models"
	"go.uber.org/zap"
)

// Searcher retrieves chunks for a question.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) (*models.RetrievalResult, error)
}

// Asker answers questions by retrieving chunks and passing them to a chat model.
type Asker struct {
	searcher Searcher
	chat     ChatModel
	logger   *zap.Logger
}

// AskerOption configures an Asker.
type AskerOption func(*Asker)

// WithLogger sets a logger for per-question debug output.
func WithLogger(l *zap.Logger) AskerOption {
	return func(a *Asker) { a.logger = l }
}

// NewAsker creates an Asker.
func NewAsker(searcher Searcher, chat ChatModel, opts ...AskerOption) *Asker {
	a := &Asker{searcher: searcher, chat: chat}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask retrieves topK chunks for question and generates an answer grounded on
// them. Retrieval errors are returned unchanged so callers can tell a missing
// index from a provider failure.
func (a *Asker) Ask(ctx context.Context, question string, topK int) (*models.AskResponse, error) {
	res, err := a.searcher.Search(ctx, question, topK)
	if err != nil {
		return nil, err
	}
	answer, err := a.chat.Chat(ctx, BuildMessages(question, res.Chunks))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	if a.logger != nil {
		a.logger.Debug("answered",
			zap.String("question", question),
			zap.String("model", a.chat.ModelName()),
			zap.Int("sources", len(res.Chunks)))
	}
	return &models.AskResponse{
		Query:   question,
		Answer:  StripReasoning(answer),
		Sources: res.Chunks,
	}, nil
}
