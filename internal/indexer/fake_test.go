package indexer

import (
	"context"
	"errors"
	"strings"
)

// topicEmbedder maps text to [count("Cats"), count("Stocks")] so sentence
// distances are predictable.
type topicEmbedder struct {
	calls int
	err   error
}

func (e *topicEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(strings.Count(text, "Cats")), float32(strings.Count(text, "Stocks"))}, nil
}

func (e *topicEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (e *topicEmbedder) Dimensions() int   { return 2 }
func (e *topicEmbedder) ModelName() string { return "topic" }
func (e *topicEmbedder) Close() error      { return nil }

var errProviderDown = errors.New("provider down")
