// Package search answers queries by merging semantic and lexical hits.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/scholar/internal/config"
	"github.com/hyperjump/scholar/internal/embedding"
	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/keyword"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/internal/vector"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Retriever runs hybrid retrieval over a vector store and a BM25 index. It
// never writes to either. Search is safe for concurrent use, also while
// Reload swaps in freshly built indexes.
type Retriever struct {
	embedder     embedding.Embedder
	embedTimeout time.Duration
	open         func(ctx context.Context) (vector.Store, *keyword.BM25Index, error)
	logger       *zap.Logger

	mu        sync.RWMutex
	store     vector.Store
	lexical   *keyword.BM25Index
	suggester *keyword.Suggester
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithLogger sets a logger for per-query debug output.
func WithLogger(l *zap.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

// WithEmbedTimeout bounds the query embedding call.
func WithEmbedTimeout(d time.Duration) RetrieverOption {
	return func(r *Retriever) { r.embedTimeout = d }
}

// NewRetriever creates a retriever over already opened indexes. It takes
// ownership of store.
func NewRetriever(embedder embedding.Embedder, store vector.Store, lexical *keyword.BM25Index, opts ...RetrieverOption) *Retriever {
	r := &Retriever{embedder: embedder}
	for _, opt := range opts {
		opt(r)
	}
	r.swap(store, lexical)
	return r
}

// Open opens both persisted indexes named by cfg. It fails with
// *errs.IndexNotFoundError when ingestion has never run.
func Open(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, opts ...RetrieverOption) (*Retriever, error) {
	opts = append([]RetrieverOption{WithEmbedTimeout(cfg.Search.EmbedTimeout)}, opts...)
	r := &Retriever{embedder: embedder}
	for _, opt := range opts {
		opt(r)
	}
	r.open = func(ctx context.Context) (vector.Store, *keyword.BM25Index, error) {
		return openIndexes(ctx, cfg, embedder, r.logger)
	}
	store, lexical, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	r.swap(store, lexical)
	return r, nil
}

func openIndexes(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, logger *zap.Logger) (vector.Store, *keyword.BM25Index, error) {
	lexical, err := keyword.Load(cfg.Storage.LexicalIndexPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := vector.Open(ctx, cfg.Storage.VectorDBPath(), embedder.ModelName(), embedder.Dimensions(),
		vector.MustExist(),
		vector.WithIndexType(cfg.Vector.IndexType),
		vector.WithHNSWParams(cfg.Vector.M, cfg.Vector.EfSearch),
		vector.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return store, lexical, nil
}

func (r *Retriever) swap(store vector.Store, lexical *keyword.BM25Index) vector.Store {
	var suggester *keyword.Suggester
	if lexical != nil {
		suggester = keyword.NewSuggester(lexical)
	}
	r.mu.Lock()
	old := r.store
	r.store, r.lexical, r.suggester = store, lexical, suggester
	r.mu.Unlock()
	return old
}

// Reload reopens both indexes from disk and swaps them in. On failure the
// current indexes stay in use.
func (r *Retriever) Reload(ctx context.Context) error {
	if r.open == nil {
		return fmt.Errorf("retriever was not opened from storage")
	}
	store, lexical, err := r.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload indexes: %w", err)
	}
	if old := r.swap(store, lexical); old != nil {
		_ = old.Close()
	}
	if r.logger != nil {
		r.logger.Info("indexes reloaded", zap.Int("lexical_chunks", lexical.Len()))
	}
	return nil
}

// Search returns at most topK distinct chunks for query: semantic hits first,
// then lexical hits whose content was not already returned. topK <= 0 yields
// an empty result.
func (r *Retriever) Search(ctx context.Context, query string, topK int) (*models.RetrievalResult, error) {
	start := time.Now()
	result := &models.RetrievalResult{Query: query, Chunks: []models.Chunk{}}
	if topK <= 0 {
		return result, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var semantic, lexical []models.ScoredChunk
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := r.semanticSearch(gctx, query, topK)
		semantic = hits
		return err
	})
	g.Go(func() error {
		if r.lexical != nil {
			lexical = r.lexical.TopK(query, topK)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Chunks = Merge(semantic, lexical, topK)
	result.SemanticHits = len(semantic)
	result.LexicalHits = len(lexical)
	result.QueryTime = time.Since(start).Milliseconds()
	if r.logger != nil {
		r.logger.Debug("search",
			zap.String("query", query),
			zap.Int("top_k", topK),
			zap.Int("semantic", len(semantic)),
			zap.Int("lexical", len(lexical)),
			zap.Int("returned", len(result.Chunks)))
	}
	return result, nil
}

func (r *Retriever) semanticSearch(ctx context.Context, query string, topK int) ([]models.ScoredChunk, error) {
	if r.store == nil {
		return nil, nil
	}
	ectx := ctx
	if r.embedTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, r.embedTimeout)
		defer cancel()
	}
	vec, err := r.embedder.Embed(ectx, query)
	if err != nil {
		return nil, errs.NewEmbeddingError("embed query", err, false)
	}
	hits, err := r.store.SimilaritySearch(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	return hits, nil
}

// Suggest returns query with unknown terms replaced by close vocabulary
// terms, or "" when every term is known or nothing is close.
func (r *Retriever) Suggest(query string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.suggester == nil {
		return ""
	}
	return r.suggester.CorrectQuery(query)
}

// Stats reports how many entries each index holds.
type Stats struct {
	VectorChunks  int `json:"vector_chunks"`
	LexicalChunks int `json:"lexical_chunks"`
}

// Stats counts the entries of both indexes.
func (r *Retriever) Stats(ctx context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Stats
	if r.lexical != nil {
		s.LexicalChunks = r.lexical.Len()
	}
	if r.store != nil {
		n, err := r.store.Count(ctx)
		if err != nil {
			return s, err
		}
		s.VectorChunks = n
	}
	return s, nil
}

// Close releases the vector store.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}
