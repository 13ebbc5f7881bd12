// Package storage reports on the files ingestion leaves on disk.
package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperjump/scholar/internal/config"
	"github.com/hyperjump/scholar/internal/extract"
)

// IndexFile describes one persisted index file.
type IndexFile struct {
	Path      string    `json:"path"`
	Exists    bool      `json:"exists"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time,omitempty"`
}

// Status summarizes the data directory and both indexes.
type Status struct {
	DataDir    string    `json:"data_dir"`
	Documents  int       `json:"documents"`
	Vector     IndexFile `json:"vector"`
	Lexical    IndexFile `json:"lexical"`
	TotalBytes int64     `json:"total_bytes"`
}

// Ingested reports whether both indexes are present.
func (s *Status) Ingested() bool {
	return s.Vector.Exists && s.Lexical.Exists
}

// Inspect stats the locations named by cfg. Missing files are reported, not
// treated as errors.
func Inspect(cfg *config.Config) (*Status, error) {
	st := &Status{DataDir: cfg.DataDir}
	var err error
	if st.Documents, err = countDocuments(cfg.DataDir); err != nil {
		return nil, err
	}
	if st.Vector, err = statFile(cfg.Storage.VectorDBPath()); err != nil {
		return nil, err
	}
	if st.Lexical, err = statFile(cfg.Storage.LexicalIndexPath); err != nil {
		return nil, err
	}
	if st.TotalBytes, err = DiskUsageBytes(cfg.Storage.VectorDir, cfg.Storage.LexicalIndexPath); err != nil {
		return nil, err
	}
	return st, nil
}

func statFile(path string) (IndexFile, error) {
	f := IndexFile{Path: path}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return f, nil
	case err != nil:
		return f, err
	}
	f.Exists = true
	f.SizeBytes = info.Size()
	f.ModTime = info.ModTime()
	return f, nil
}

func countDocuments(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() && extract.IsSupported(e.Name()) {
			n++
		}
	}
	return n, nil
}

// DiskUsageBytes returns the total size of the given files and directories,
// summing directories recursively. Missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
