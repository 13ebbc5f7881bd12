package indexer

import (
	"context"
	"fmt"

	"github.com/hyperjump/scholar/internal/embedding"
	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/internal/vector"
	"go.uber.org/zap"
)

const defaultBatchSize = 96

// VectorBuilder embeds chunks and appends them to a vector store.
type VectorBuilder struct {
	store     vector.Store
	embedder  embedding.Embedder
	batchSize int
	logger    *zap.Logger
}

// NewVectorBuilder creates a builder writing to store. Wrap embedder in an
// embedding.RetryEmbedder to survive transient provider failures.
func NewVectorBuilder(store vector.Store, embedder embedding.Embedder, batchSize int, logger *zap.Logger) *VectorBuilder {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &VectorBuilder{store: store, embedder: embedder, batchSize: batchSize, logger: logger}
}

// Index embeds chunks batch by batch and stores each batch with its vectors.
// A failed batch aborts the build; earlier batches stay stored.
func (b *VectorBuilder) Index(ctx context.Context, chunks []models.Chunk) error {
	for start := 0; start < len(chunks); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+b.batchSize, len(chunks))
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Content
		}
		vecs, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return errs.NewEmbeddingError("embed chunks", err, false)
		}
		if err := b.store.AddChunks(ctx, batch, vecs); err != nil {
			return fmt.Errorf("failed to store chunks: %w", err)
		}
		if b.logger != nil {
			b.logger.Debug("vector batch stored", zap.Int("from", start), zap.Int("to", end))
		}
	}
	return nil
}
