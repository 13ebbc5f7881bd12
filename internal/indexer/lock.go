package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrIngestLocked is returned when another ingestion holds the lock.
var ErrIngestLocked = errors.New("another ingestion is already running")

// acquireLock takes the exclusive ingestion lock at path without waiting.
// The returned function releases it.
func acquireLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire ingestion lock: %w", err)
	}
	if !ok {
		return nil, ErrIngestLocked
	}
	return func() { _ = fl.Unlock() }, nil
}
