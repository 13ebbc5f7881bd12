package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/pkg/utils"
)

// DBFileName is the SQLite file created inside the vector directory.
const DBFileName = "vectors.db"

// ErrModelMismatch is returned when a store is opened with an embedding model
// or dimension other than the one it was built with.
var ErrModelMismatch = errors.New("embedding model mismatch")

// Store persists chunks with their embeddings and answers similarity queries.
type Store interface {
	AddChunks(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	SimilaritySearch(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// SQLiteStore keeps chunk rows and embedding blobs in SQLite and mirrors the
// embeddings into an in-memory Index for search.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	model      string
	dimensions int
	index      Index
	indexType  string
	m          int
	efSearch   int
	mustExist  bool
	logger     *zap.Logger
	mu         sync.Mutex // serializes writers
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithIndexType selects the in-memory search structure ("memory" or "hnsw").
func WithIndexType(indexType string) Option {
	return func(s *SQLiteStore) { s.indexType = indexType }
}

// WithHNSWParams sets the HNSW graph degree and search breadth.
func WithHNSWParams(m, efSearch int) Option {
	return func(s *SQLiteStore) { s.m, s.efSearch = m, efSearch }
}

// MustExist makes Open fail with *errs.IndexNotFoundError instead of creating
// a new database. Retrieval opens stores this way.
func MustExist() Option {
	return func(s *SQLiteStore) { s.mustExist = true }
}

// WithLogger sets a logger for open and write events.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLiteStore) { s.logger = l }
}

// Open opens or creates the store at path for the given embedding model and
// dimension, then loads all stored embeddings into the search index.
func Open(ctx context.Context, path, model string, dimensions int, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{path: path, model: model, dimensions: dimensions}
	for _, opt := range opts {
		opt(s)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}

	if s.mustExist {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, &errs.IndexNotFoundError{Index: "vector", Path: path}
		}
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create vector store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if err := initSchema(ctx, s.db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.checkMeta(ctx); err != nil {
		return err
	}
	index, err := NewIndex(s.indexType, s.dimensions, s.m, s.efSearch)
	if err != nil {
		return err
	}
	s.index = index
	return s.loadIndex(ctx)
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS store_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		model TEXT NOT NULL,
		dimensions INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		source_id TEXT NOT NULL,
		page_number INTEGER NOT NULL,
		chunk_index INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_id, page_number);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// checkMeta records the model on first use and rejects a different one later.
func (s *SQLiteStore) checkMeta(ctx context.Context) error {
	var model string
	var dims int
	err := s.db.QueryRowContext(ctx, "SELECT model, dimensions FROM store_meta WHERE id = 1").Scan(&model, &dims)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, "INSERT INTO store_meta (id, model, dimensions) VALUES (1, ?, ?)", s.model, s.dimensions)
		if err != nil {
			return fmt.Errorf("failed to record store metadata: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read store metadata: %w", err)
	}
	if model != s.model || dims != s.dimensions {
		return fmt.Errorf("%w: %s was built with %s (%d dims) but %s (%d dims) is configured; delete it and re-ingest",
			ErrModelMismatch, s.path, model, dims, s.model, s.dimensions)
	}
	return nil
}

func (s *SQLiteStore) loadIndex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT seq, embedding FROM chunks ORDER BY seq")
	if err != nil {
		return fmt.Errorf("failed to load embeddings: %w", err)
	}
	defer rows.Close()

	var keys []uint64
	var vectors [][]float32
	for rows.Next() {
		var seq int64
		var blob []byte
		if err := rows.Scan(&seq, &blob); err != nil {
			return fmt.Errorf("failed to scan embedding: %w", err)
		}
		keys = append(keys, uint64(seq))
		vectors = append(vectors, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load embeddings: %w", err)
	}
	if err := s.index.Add(ctx, keys, vectors); err != nil {
		return fmt.Errorf("failed to build vector index: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("vector store opened",
			zap.String("path", s.path), zap.String("model", s.model), zap.Int("vectors", len(keys)))
	}
	return nil
}

// AddChunks appends chunks with their embeddings in a single transaction.
// Either every chunk is stored with its vector or none is.
func (s *SQLiteStore) AddChunks(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	for i, v := range vectors {
		if len(v) != s.dimensions {
			return fmt.Errorf("vector %d dimension mismatch: got %d, expected %d", i, len(v), s.dimensions)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, content, source_id, page_number, chunk_index, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	keys := make([]uint64, len(chunks))
	normalized := make([][]float32, len(chunks))
	for i, ch := range chunks {
		vec := normalize(vectors[i])
		res, err := stmt.ExecContext(ctx,
			uuid.New().String(), ch.Content, ch.Metadata.SourceID,
			ch.Metadata.PageNumber, ch.Metadata.ChunkIndex, float32SliceToBytes(vec))
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", ch.Metadata.ChunkIndex, err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read chunk row id: %w", err)
		}
		keys[i] = uint64(seq)
		normalized[i] = vec
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	if err := s.index.Add(ctx, keys, normalized); err != nil {
		return fmt.Errorf("failed to index vectors: %w", err)
	}
	return nil
}

// SimilaritySearch returns up to k chunks most similar to query, best first.
func (s *SQLiteStore) SimilaritySearch(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), s.dimensions)
	}
	hits, err := s.index.Search(ctx, normalize(query), k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(hits))
	args := make([]any, len(hits))
	for i, h := range hits {
		placeholders[i] = "?"
		args[i] = int64(h.Key)
	}
	stmt := fmt.Sprintf(`
		SELECT seq, content, source_id, page_number, chunk_index
		FROM chunks WHERE seq IN (%s)
	`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chunks: %w", err)
	}
	defer rows.Close()

	byKey := make(map[uint64]models.Chunk, len(hits))
	for rows.Next() {
		var seq int64
		var ch models.Chunk
		if err := rows.Scan(&seq, &ch.Content, &ch.Metadata.SourceID, &ch.Metadata.PageNumber, &ch.Metadata.ChunkIndex); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		byKey[uint64(seq)] = ch
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch chunks: %w", err)
	}

	out := make([]models.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		ch, ok := byKey[h.Key]
		if !ok {
			continue
		}
		out = append(out, models.ScoredChunk{Chunk: ch, Score: h.Score})
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Model returns the embedding model the store was built with.
func (s *SQLiteStore) Model() string { return s.model }

// Dimensions returns the embedding dimension.
func (s *SQLiteStore) Dimensions() int { return s.dimensions }

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the index and the database.
func (s *SQLiteStore) Close() error {
	if s.index != nil {
		_ = s.index.Close()
	}
	return s.db.Close()
}

// normalize returns a unit-length copy of v.
func normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	utils.NormalizeL2(out)
	return out
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
