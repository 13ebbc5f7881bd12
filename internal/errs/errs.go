// Package errs defines the error taxonomy shared by ingestion and retrieval.
//
// Each failure class has a concrete type usable with errors.As and a sentinel
// usable with errors.Is, so callers can branch on the class without caring
// which component produced it.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad matches any *LoadError.
	ErrLoad = errors.New("document load failed")
	// ErrEmbedding matches any *EmbeddingError.
	ErrEmbedding = errors.New("embedding failed")
	// ErrIndexNotFound matches any *IndexNotFoundError.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexConsistency matches any *IndexConsistencyError.
	ErrIndexConsistency = errors.New("index inconsistent")
)

// LoadError reports a source document that could not be read or parsed.
// The loader recovers from it by skipping the document.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// EmbeddingError reports that the embedding provider was unreachable or rejected input.
type EmbeddingError struct {
	Op        string // "embed query", "embed documents", ...
	Err       error
	Retryable bool // transient failure (network, 429, 5xx)
}

func (e *EmbeddingError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("embedding: %v", e.Err)
	}
	return fmt.Sprintf("embedding: %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEmbedding.
func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbedding }

// NewEmbeddingError wraps err as an EmbeddingError. An err that already is an
// EmbeddingError is returned unchanged so the retryable flag survives.
func NewEmbeddingError(op string, err error, retryable bool) error {
	if err == nil {
		return nil
	}
	var ee *EmbeddingError
	if errors.As(err, &ee) {
		return err
	}
	return &EmbeddingError{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether err is a transient EmbeddingError.
func IsRetryable(err error) bool {
	var ee *EmbeddingError
	return errors.As(err, &ee) && ee.Retryable
}

// IndexNotFoundError reports a query against storage that was never ingested.
type IndexNotFoundError struct {
	Index string // "vector" or "lexical"
	Path  string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("%s index not found at %s: run `scholar ingest` first", e.Index, e.Path)
}

// Is reports whether target is ErrIndexNotFound.
func (e *IndexNotFoundError) Is(target error) bool { return target == ErrIndexNotFound }

// IndexConsistencyError reports a lexical artifact whose chunk list does not
// line up with its term statistics. The artifact must be rebuilt.
type IndexConsistencyError struct {
	Path   string
	Chunks int
	Stats  int
}

func (e *IndexConsistencyError) Error() string {
	return fmt.Sprintf("lexical index %s is inconsistent (%d chunks, %d term-frequency rows): rebuild with `scholar ingest`",
		e.Path, e.Chunks, e.Stats)
}

// Is reports whether target is ErrIndexConsistency.
func (e *IndexConsistencyError) Is(target error) bool { return target == ErrIndexConsistency }
