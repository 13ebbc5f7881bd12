package embedding

import (
	"context"
	"sync"
)

// countingEmbedder wraps a HashEmbedder, counts calls and fails the first
// failures EmbedBatch calls with err.
type countingEmbedder struct {
	*HashEmbedder
	mu       sync.Mutex
	embeds   int
	batches  int
	failures int
	err      error
}

func newCountingEmbedder() *countingEmbedder {
	return &countingEmbedder{HashEmbedder: NewHashEmbedder(8)}
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.embeds++
	c.mu.Unlock()
	return c.HashEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.batches++
	fail := c.batches <= c.failures
	c.mu.Unlock()
	if fail {
		return nil, c.err
	}
	return c.HashEmbedder.EmbedBatch(ctx, texts)
}
