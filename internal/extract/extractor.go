// Package extract turns source documents into normalized per-page text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions lists the file types the loader reads.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".xlsx": true,
	".pptx": true,
	".txt":  true,
	".md":   true,
}

// IsSupported reports whether path has an extension the loader reads.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extractor extracts per-page plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages reads the file at path and returns the raw text of each page.
// A PDF yields one entry per page, a spreadsheet one per sheet, a slide deck
// one per slide and a plain text file a single entry. Entries may be empty.
func (e *Extractor) ExtractPages(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.ExtractPagesBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractPagesBytes extracts pages from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractPagesBytes(content []byte, ext string) ([]string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".xlsx":
		return extractExcel(content)
	case ".pptx":
		return extractPPTX(content)
	case ".txt", ".md":
		return []string{extractPlain(content)}, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}
