package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/scholar/internal/config"
	"github.com/hyperjump/scholar/internal/embedding"
	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/indexer"
	"github.com/hyperjump/scholar/internal/keyword"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeStore returns fixed hits regardless of the query.
type fakeStore struct {
	hits   []models.ScoredChunk
	closed bool
}

func (s *fakeStore) AddChunks(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	return nil
}

func (s *fakeStore) SimilaritySearch(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error) {
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *fakeStore) Count(ctx context.Context) (int, error) { return len(s.hits), nil }
func (s *fakeStore) Close() error                           { s.closed = true; return nil }

// stubEmbedder fails Embed with err, or blocks until the context ends when
// block is set.
type stubEmbedder struct {
	*embedding.HashEmbedder
	err   error
	block bool
	calls int
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.HashEmbedder.Embed(ctx, text)
}

func scored(contents ...string) []models.ScoredChunk {
	out := make([]models.ScoredChunk, len(contents))
	for i, c := range contents {
		out[i] = models.ScoredChunk{Chunk: models.Chunk{Content: c, Metadata: models.ChunkMetadata{ChunkIndex: i}}, Score: 1 - float64(i)/10}
	}
	return out
}

func lexicalOf(contents ...string) *keyword.BM25Index {
	chunks := make([]models.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = models.Chunk{Content: c, Metadata: models.ChunkMetadata{ChunkIndex: i}}
	}
	return keyword.Build(chunks, keyword.DefaultParams())
}

func contents(chunks []models.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

func TestRetriever_Search_dedupesSemanticDuplicates(t *testing.T) {
	e := &stubEmbedder{HashEmbedder: embedding.NewHashEmbedder(8)}
	r := NewRetriever(e, &fakeStore{hits: scored("A", "B", "A")}, lexicalOf("zzz"))
	res, err := r.Search(context.Background(), "attention mechanism", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "zzz"}, contents(res.Chunks))
	assert.Equal(t, 3, res.SemanticHits)
	assert.Equal(t, 1, res.LexicalHits)
}

func TestRetriever_Search_semanticWinsOnOverlap(t *testing.T) {
	e := &stubEmbedder{HashEmbedder: embedding.NewHashEmbedder(8)}
	store := &fakeStore{hits: scored("dense retrieval", "attention layers")}
	lex := lexicalOf("sparse attention", "attention layers", "unrelated")
	r := NewRetriever(e, store, lex)

	res, err := r.Search(context.Background(), "attention", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"dense retrieval", "attention layers", "sparse attention"}, contents(res.Chunks))
}

func TestRetriever_Search_invariants(t *testing.T) {
	e := &stubEmbedder{HashEmbedder: embedding.NewHashEmbedder(8)}
	r := NewRetriever(e, &fakeStore{hits: scored("a", "b", "a", "c", "b")}, lexicalOf("c", "d", "a", "e"))
	for k := 1; k <= 8; k++ {
		res, err := r.Search(context.Background(), "a c", k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Chunks), k)
		seen := map[string]bool{}
		for _, c := range res.Chunks {
			assert.False(t, seen[c.Content], "duplicate %q at k=%d", c.Content, k)
			seen[c.Content] = true
		}
	}
}

func TestRetriever_Search_zeroTopK(t *testing.T) {
	e := &stubEmbedder{HashEmbedder: embedding.NewHashEmbedder(8), err: errors.New("unreachable")}
	r := NewRetriever(e, &fakeStore{hits: scored("A")}, lexicalOf("A"))
	for _, k := range []int{0, -3} {
		res, err := r.Search(context.Background(), "anything", k)
		require.NoError(t, err)
		assert.Empty(t, res.Chunks)
		assert.NotNil(t, res.Chunks)
	}
	assert.Zero(t, e.calls)
}

func TestRetriever_Search_embeddingFailure(t *testing.T) {
	down := errors.New("connection refused")
	e := &stubEmbedder{HashEmbedder: embedding.NewHashEmbedder(8), err: down}
	r := NewRetriever(e, &fakeStore{hits: scored("A")}, lexicalOf("A"))
	_, err := r.Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrEmbedding)
	assert.ErrorIs(t, err, down)
}

func TestRetriever_Search_embedTimeout(t *testing.T) {
	e := &stubEmbedder{HashEmbedder: embedding.NewHashEmbedder(8), block: true}
	r := NewRetriever(e, &fakeStore{}, lexicalOf("A"), WithEmbedTimeout(20*time.Millisecond))
	_, err := r.Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrEmbedding)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetriever_Search_emptyIndexes(t *testing.T) {
	e := &stubEmbedder{HashEmbedder: embedding.NewHashEmbedder(8)}
	r := NewRetriever(e, &fakeStore{}, lexicalOf())
	res, err := r.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Empty(t, res.Chunks)
}

func TestRetriever_Close(t *testing.T) {
	store := &fakeStore{}
	r := NewRetriever(embedding.NewHashEmbedder(8), store, lexicalOf())
	require.NoError(t, r.Close())
	assert.True(t, store.closed)
	require.NoError(t, r.Close())
}

func TestRetriever_ReloadWithoutStorage(t *testing.T) {
	r := NewRetriever(embedding.NewHashEmbedder(8), &fakeStore{}, lexicalOf())
	assert.Error(t, r.Reload(context.Background()))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir: filepath.Join(dir, "data"),
		Storage: config.StorageConfig{
			VectorDir:        filepath.Join(dir, ".chroma"),
			LexicalIndexPath: filepath.Join(dir, "bm25.gob"),
		},
		Embedding: config.EmbeddingConfig{Provider: config.ProviderHash, Dimensions: 64},
	}
	config.ApplyDefaults(cfg)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0755))
	return cfg
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestOpen_notIngested(t *testing.T) {
	cfg := testConfig(t)
	_, err := Open(context.Background(), cfg, embedding.NewHashEmbedder(64))
	require.Error(t, err)
	var nf *errs.IndexNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.True(t, errors.Is(err, errs.ErrIndexNotFound))
}

func TestOpen_vectorStoreMissing(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, lexicalOf("A").Save(cfg.Storage.LexicalIndexPath))
	_, err := Open(context.Background(), cfg, embedding.NewHashEmbedder(64))
	var nf *errs.IndexNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "vector", nf.Index)
}

func TestRetriever_endToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	e := embedding.NewHashEmbedder(64)
	writeDoc(t, cfg.DataDir, "attention.txt", "Attention is all you need [3]. Self-attention    replaces recurrence.")
	writeDoc(t, cfg.DataDir, "bm25.txt", "BM25 ranks documents by term frequency. It saturates repeated terms.")

	idx := indexer.NewIndexer(cfg, e)
	_, err := idx.Ingest(ctx, cfg.DataDir)
	require.NoError(t, err)

	r, err := Open(ctx, cfg, e, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer r.Close()

	res, err := r.Search(ctx, "BM25 ranks documents", 2)
	require.NoError(t, err)
	require.NotEmpty(t, res.Chunks)
	assert.LessOrEqual(t, len(res.Chunks), 2)
	found := false
	for _, c := range res.Chunks {
		if c.Metadata.SourceID == "bm25.txt" {
			found = true
		}
	}
	assert.True(t, found, "expected a bm25.txt chunk in %v", contents(res.Chunks))

	before, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.LexicalChunks, before.VectorChunks)

	writeDoc(t, cfg.DataDir, "extra.txt", "Dense passage retrieval uses two encoders.")
	_, err = idx.Ingest(ctx, cfg.DataDir)
	require.NoError(t, err)
	require.NoError(t, r.Reload(ctx))

	after, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Greater(t, after.LexicalChunks, before.LexicalChunks)
	assert.Greater(t, after.VectorChunks, before.VectorChunks)

	assert.Equal(t, "BM25 ranks", r.Suggest("BM25 ramks"))
	assert.Equal(t, "", r.Suggest("BM25 ranks"))
}

func TestRetriever_concurrentSearchAndReload(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	e := embedding.NewHashEmbedder(64)
	writeDoc(t, cfg.DataDir, "a.txt", "Transformers use attention. Retrieval uses indexes.")
	_, err := indexer.NewIndexer(cfg, e).Ingest(ctx, cfg.DataDir)
	require.NoError(t, err)

	r, err := Open(ctx, cfg, e)
	require.NoError(t, err)
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := r.Search(ctx, "attention", 3)
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 3; i++ {
		assert.NoError(t, r.Reload(ctx))
	}
	wg.Wait()
}
