package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/hyperjump/scholar/pkg/utils"
)

// HashEmbedder is a deterministic offline embedder. It builds a bag-of-words
// vector by hashing each whitespace-separated token into a bucket, so texts
// sharing words land close together. Useful for tests and air-gapped demos;
// it has no semantic understanding.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns a unit-length embedding derived from the text's tokens.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	for _, word := range SplitWords(text) {
		h := HashString(word)
		bucket := h % e.dimensions
		sign := float32(1)
		if (h/e.dimensions)%2 == 1 {
			sign = -1
		}
		emb[bucket] += sign
	}
	var nonZero bool
	for _, v := range emb {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		// Empty text still needs a usable direction.
		for i := range emb {
			emb[i] = float32(math.Sin(float64(i+1))*0.1 + 0.01)
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName includes the dimension since it changes the embedding space.
func (e *HashEmbedder) ModelName() string {
	return fmt.Sprintf("hash-%d", e.dimensions)
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
