// Package embedding provides text embedding providers and wrappers around them.
package embedding

import "context"

// Embedder produces vector embeddings for text. Embed is used for queries and
// EmbedBatch for documents; providers that distinguish the two (Cohere's
// input_type) embed them differently.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// ModelName identifies the embedding space. Vectors from different models
	// must never be compared.
	ModelName() string
	Close() error
}
