package keyword

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/hyperjump/scholar/internal/errs"
)

// artifactVersion is bumped whenever the encoded layout changes.
const artifactVersion = 1

type artifact struct {
	Version int
	Index   *BM25Index
}

// Save writes the index to path atomically: readers see either the previous
// artifact or the new one, never a partial file.
func (idx *BM25Index) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create lexical index directory: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact{Version: artifactVersion, Index: idx}); err != nil {
		return fmt.Errorf("failed to encode lexical index: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write lexical index: %w", err)
	}
	return nil
}

// Load reads an index written by Save. A missing file yields
// *errs.IndexNotFoundError; an artifact whose statistics and chunk list have
// different lengths yields *errs.IndexConsistencyError.
func Load(path string) (*BM25Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &errs.IndexNotFoundError{Index: "lexical", Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lexical index: %w", err)
	}

	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode lexical index %s: %w", path, err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("lexical index %s has version %d, expected %d: re-run ingest", path, a.Version, artifactVersion)
	}
	idx := a.Index
	if idx == nil {
		idx = &BM25Index{}
	}
	if len(idx.TermFreqs) != len(idx.Chunks) || len(idx.DocLens) != len(idx.Chunks) {
		return nil, &errs.IndexConsistencyError{Path: path, Chunks: len(idx.Chunks), Stats: len(idx.TermFreqs)}
	}
	if idx.IDF == nil {
		idx.IDF = make(map[string]float64)
	}
	for i := range idx.TermFreqs {
		if idx.TermFreqs[i] == nil {
			idx.TermFreqs[i] = map[string]int{}
		}
	}
	return idx, nil
}
