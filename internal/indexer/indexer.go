// Package indexer turns a directory of papers into the vector and lexical
// indexes used by retrieval.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hyperjump/scholar/internal/config"
	"github.com/hyperjump/scholar/internal/embedding"
	"github.com/hyperjump/scholar/internal/extract"
	"github.com/hyperjump/scholar/internal/keyword"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/internal/vector"
	"go.uber.org/zap"
)

// Indexer runs the ingestion pipeline: load, chunk, split, then build both
// indexes from the same chunk list.
type Indexer struct {
	cfg      *config.Config
	embedder embedding.Embedder
	loader   *extract.Loader
	logger   *zap.Logger // optional; when set, logs pipeline stages
	rebuild  bool
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for pipeline progress and skipped files.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithRebuild makes each run replace the vector store instead of appending to
// it. The new store is written next to the old one and renamed into place once
// every chunk is stored, so a failed run leaves the previous store intact.
func WithRebuild() IndexerOption {
	return func(idx *Indexer) { idx.rebuild = true }
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Files    int           `json:"files"`
	Pages    int           `json:"pages"`
	Segments int           `json:"segments"`
	Chunks   int           `json:"chunks"`
	Skipped  []string      `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
}

// NewIndexer creates an indexer that embeds with embedder and writes to the
// locations in cfg.Storage.
func NewIndexer(cfg *config.Config, embedder embedding.Embedder, opts ...IndexerOption) *Indexer {
	idx := &Indexer{cfg: cfg, embedder: embedder}
	for _, opt := range opts {
		opt(idx)
	}
	idx.loader = extract.NewLoader(extract.WithLogger(idx.logger))
	return idx
}

// Ingest indexes every supported file in dir. Vector rows are appended to the
// store unless WithRebuild was given; the lexical artifact is always replaced.
// Only one ingestion may run at a time per vector directory; a concurrent call
// returns ErrIngestLocked.
func (idx *Indexer) Ingest(ctx context.Context, dir string) (*IngestReport, error) {
	start := time.Now()
	unlock, err := acquireLock(idx.cfg.Storage.LockPath())
	if err != nil {
		return nil, err
	}
	defer unlock()

	loaded, err := idx.loader.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	report := &IngestReport{Files: loaded.Files, Pages: len(loaded.Pages)}
	for _, le := range loaded.Skipped {
		report.Skipped = append(report.Skipped, le.Path)
	}
	idx.debug("documents loaded", zap.Int("files", report.Files), zap.Int("pages", report.Pages))

	embedder := embedding.NewRetryEmbedder(idx.embedder, idx.cfg.Embedding.MaxRetries,
		embedding.WithRetryLogger(idx.logger))

	chunker := NewSemanticChunker(embedder,
		WithBreakpointPercentile(idx.cfg.Chunking.BreakpointPercentile),
		WithBufferSize(idx.cfg.Chunking.BufferSize),
		WithChunkerLogger(idx.logger))
	segments, err := chunker.Chunk(ctx, loaded.Pages)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk pages: %w", err)
	}
	report.Segments = len(segments)

	chunks := NewSplitter(idx.cfg.Chunking.WindowSize, idx.cfg.Chunking.Overlap).Split(segments)
	report.Chunks = len(chunks)
	idx.debug("chunks ready", zap.Int("segments", report.Segments), zap.Int("chunks", report.Chunks))

	if err := idx.buildVectors(ctx, embedder, chunks); err != nil {
		return nil, err
	}
	if err := keyword.Build(chunks, keyword.DefaultParams()).Save(idx.cfg.Storage.LexicalIndexPath); err != nil {
		return nil, fmt.Errorf("failed to build lexical index: %w", err)
	}

	report.Duration = time.Since(start)
	if idx.logger != nil {
		idx.logger.Info("ingestion complete",
			zap.String("dir", dir),
			zap.Int("files", report.Files),
			zap.Int("chunks", report.Chunks),
			zap.Int("skipped", len(report.Skipped)),
			zap.Duration("took", report.Duration))
	}
	return report, nil
}

func (idx *Indexer) buildVectors(ctx context.Context, embedder embedding.Embedder, chunks []models.Chunk) error {
	target := idx.cfg.Storage.VectorDBPath()
	path := target
	if idx.rebuild {
		path = target + ".rebuild"
		if err := removeSQLiteFiles(path); err != nil {
			return err
		}
	}
	store, err := vector.Open(ctx, path, idx.embedder.ModelName(), idx.embedder.Dimensions(),
		vector.WithIndexType(idx.cfg.Vector.IndexType),
		vector.WithHNSWParams(idx.cfg.Vector.M, idx.cfg.Vector.EfSearch),
		vector.WithLogger(idx.logger))
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	if err := NewVectorBuilder(store, embedder, idx.cfg.Embedding.BatchSize, idx.logger).Index(ctx, chunks); err != nil {
		_ = store.Close()
		if idx.rebuild {
			_ = removeSQLiteFiles(path)
		}
		return fmt.Errorf("failed to build vector index: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close vector store: %w", err)
	}
	if !idx.rebuild {
		return nil
	}
	// The old database's journal files must not outlive it.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(target + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale journal: %w", err)
		}
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("failed to replace vector store: %w", err)
	}
	idx.debug("vector store replaced", zap.String("path", target))
	return nil
}

func removeSQLiteFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

func (idx *Indexer) debug(msg string, fields ...zap.Field) {
	if idx.logger != nil {
		idx.logger.Debug(msg, fields...)
	}
}
