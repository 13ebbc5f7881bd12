// Package cli renders scholar results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/scholar/internal/indexer"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/internal/search"
	"github.com/hyperjump/scholar/internal/storage"
	"github.com/hyperjump/scholar/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	snippetLen = 240
	sourceLen  = 300
	separator  = "─────────────────────────────────────────────────────────"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// SearchOutput is what the search command prints.
type SearchOutput struct {
	*models.RetrievalResult
	Suggestion string `json:"suggestion,omitempty"`
}

// WriteSearchResults writes retrieval results to w in the given format.
func WriteSearchResults(w io.Writer, out SearchOutput, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, out)
	}
	res := out.RetrievalResult
	fmt.Fprintf(w, "\nFound %d chunks in %dms (%d semantic, %d lexical before merging)\n",
		len(res.Chunks), res.QueryTime, res.SemanticHits, res.LexicalHits)
	if out.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean: %s\n", out.Suggestion)
	}
	fmt.Fprintln(w)
	for i, c := range res.Chunks {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "[%d] %s | page %d | chunk %d\n", i+1, c.Metadata.SourceID, c.Metadata.PageNumber, c.Metadata.ChunkIndex)
		fmt.Fprintf(w, "\n%s\n\n", search.Highlight(c.Content, res.Query, snippetLen))
	}
	return nil
}

// WriteAskResponse writes a generated answer followed by the chunks it used.
func WriteAskResponse(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\n%s\n\n", strings.TrimSpace(resp.Answer))
	if len(resp.Sources) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Sources:")
	for i, c := range resp.Sources {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Source %d: %s (page %d)\n", i+1, c.Metadata.SourceID, c.Metadata.PageNumber)
		fmt.Fprintf(w, "%s\n", utils.Truncate(c.Content, sourceLen))
	}
	return nil
}

// WriteIngestReport summarizes an ingestion run.
func WriteIngestReport(w io.Writer, r *indexer.IngestReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Ingested %d file(s): %d pages, %d segments, %d chunks in %s\n",
		r.Files, r.Pages, r.Segments, r.Chunks, r.Duration.Round(time.Millisecond))
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "skipped: %s\n", s)
	}
	return nil
}

// StatusOutput is what the status command prints.
type StatusOutput struct {
	*storage.Status
	Index *search.Stats `json:"index,omitempty"`
}

// WriteStatus writes the storage summary and, when the indexes could be
// opened, their entry counts.
func WriteStatus(w io.Writer, st StatusOutput, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "data_dir:        %s\n", st.DataDir)
	fmt.Fprintf(w, "documents:       %d   # supported files in data_dir\n", st.Documents)
	writeIndexFile(w, "vector_store:", st.Vector)
	writeIndexFile(w, "lexical_index:", st.Lexical)
	fmt.Fprintf(w, "disk_usage:      %d bytes\n", st.TotalBytes)
	if st.Index != nil {
		fmt.Fprintf(w, "vector_chunks:   %d\n", st.Index.VectorChunks)
		fmt.Fprintf(w, "lexical_chunks:  %d\n", st.Index.LexicalChunks)
	}
	if !st.Ingested() {
		fmt.Fprintln(w, "\nNo index found. Run 'scholar ingest' first.")
	}
	return nil
}

func writeIndexFile(w io.Writer, label string, f storage.IndexFile) {
	if !f.Exists {
		fmt.Fprintf(w, "%-16s %s (missing)\n", label, f.Path)
		return
	}
	fmt.Fprintf(w, "%-16s %s (%d bytes)\n", label, f.Path, f.SizeBytes)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
