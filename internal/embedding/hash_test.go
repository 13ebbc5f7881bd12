package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/hyperjump/scholar/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "neural networks learn representations")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "neural networks learn representations")
	require.NoError(t, err)
	assert.Equal(t, a, b, "embedding must be deterministic")
	assert.Len(t, a, 64)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	near, _ := e.Embed(ctx, "neural networks learn features")
	far, _ := e.Embed(ctx, "protein folding kinetics")
	assert.Greater(t, utils.CosineSimilarity(a, near), utils.CosineSimilarity(a, far))
}

func TestHashEmbedder_emptyText(t *testing.T) {
	e := NewHashEmbedder(8)
	v, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.NotZero(t, utils.CosineSimilarity(v, v))
}

func TestHashEmbedder_batchAndMetadata(t *testing.T) {
	e := NewHashEmbedder(0)
	assert.Equal(t, 384, e.Dimensions())
	assert.Equal(t, "hash-384", e.ModelName())

	out, err := e.EmbedBatch(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, out[0], out[2])
	assert.NoError(t, e.Close())
}

func TestHashEmbedder_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHashEmbedder(4).Embed(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
