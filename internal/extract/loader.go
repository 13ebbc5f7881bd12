package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/models"
	"go.uber.org/zap"
)

// Loader reads every supported document in a directory into normalized pages.
type Loader struct {
	extractor *Extractor
	logger    *zap.Logger // optional; when set, logs skipped files
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for skipped files and per-file debug output.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a loader backed by a default Extractor.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{extractor: NewExtractor()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadReport summarizes one directory load.
type LoadReport struct {
	Pages   []models.RawPage
	Files   int               // files that produced at least one page
	Skipped []*errs.LoadError // files that could not be parsed
}

// LoadAll returns the normalized pages of every supported file in dir.
// Unparseable files are logged and skipped.
func (ld *Loader) LoadAll(ctx context.Context, dir string) ([]models.RawPage, error) {
	report, err := ld.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	return report.Pages, nil
}

// Load is LoadAll with a report of what was read and skipped. Files are read
// non-recursively in lexicographic name order; pages whose normalized text is
// empty are dropped. A missing directory is an error.
func (ld *Loader) Load(ctx context.Context, dir string) (*LoadReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && IsSupported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	report := &LoadReport{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name)
		raw, err := ld.extractor.ExtractPages(path)
		if err != nil {
			loadErr := &errs.LoadError{Path: path, Err: err}
			report.Skipped = append(report.Skipped, loadErr)
			if ld.logger != nil {
				ld.logger.Warn("skipping unreadable document", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		kept := 0
		for i, text := range raw {
			text = Normalize(text)
			if text == "" {
				continue
			}
			report.Pages = append(report.Pages, models.RawPage{
				Text:       text,
				SourceID:   name,
				PageNumber: i + 1,
			})
			kept++
		}
		if kept > 0 {
			report.Files++
		}
		if ld.logger != nil {
			ld.logger.Debug("loaded document", zap.String("path", path), zap.Int("pages", len(raw)), zap.Int("kept", kept))
		}
	}
	return report, nil
}
