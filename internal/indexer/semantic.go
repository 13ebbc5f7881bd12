package indexer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/scholar/internal/embedding"
	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/pkg/utils"
	"go.uber.org/zap"
)

// SemanticChunker groups consecutive sentences of a page into segments,
// starting a new segment where the embedding distance between neighbouring
// sentences jumps above a percentile of all distances on that page.
type SemanticChunker struct {
	embedder   embedding.Embedder
	percentile float64
	bufferSize int
	logger     *zap.Logger
}

// SemanticOption configures a SemanticChunker.
type SemanticOption func(*SemanticChunker)

// WithBreakpointPercentile sets the distance percentile (0-100] above which a
// segment boundary is placed.
func WithBreakpointPercentile(p float64) SemanticOption {
	return func(c *SemanticChunker) {
		if p > 0 && p <= 100 {
			c.percentile = p
		}
	}
}

// WithBufferSize sets how many neighbouring sentences on each side are joined
// to a sentence before embedding it.
func WithBufferSize(n int) SemanticOption {
	return func(c *SemanticChunker) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}

// WithChunkerLogger sets a logger for per-page debug output.
func WithChunkerLogger(l *zap.Logger) SemanticOption {
	return func(c *SemanticChunker) { c.logger = l }
}

// NewSemanticChunker creates a chunker with percentile 95 and buffer size 1.
func NewSemanticChunker(e embedding.Embedder, opts ...SemanticOption) *SemanticChunker {
	c := &SemanticChunker{embedder: e, percentile: 95, bufferSize: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits every page into segments. Pages are processed independently,
// so a segment never spans two pages. Empty pages produce nothing.
func (c *SemanticChunker) Chunk(ctx context.Context, pages []models.RawPage) ([]models.Segment, error) {
	var segments []models.Segment
	for _, page := range pages {
		parts, err := c.SplitText(ctx, page.Text)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			segments = append(segments, models.Segment{
				Content:    p,
				SourceID:   page.SourceID,
				PageNumber: page.PageNumber,
			})
		}
		if c.logger != nil {
			c.logger.Debug("page chunked",
				zap.String("source", page.SourceID), zap.Int("page", page.PageNumber), zap.Int("segments", len(parts)))
		}
	}
	return segments, nil
}

// SplitText splits one text into semantically coherent segments.
func (c *SemanticChunker) SplitText(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	sentences := splitSentences(text)
	if len(sentences) == 1 {
		return sentences, nil
	}

	buffered := make([]string, len(sentences))
	for i := range sentences {
		lo := max(0, i-c.bufferSize)
		hi := min(len(sentences), i+c.bufferSize+1)
		buffered[i] = strings.Join(sentences[lo:hi], " ")
	}
	vecs, err := c.embedder.EmbedBatch(ctx, buffered)
	if err != nil {
		return nil, errs.NewEmbeddingError("embed sentences", err, false)
	}
	if len(vecs) != len(buffered) {
		return nil, errs.NewEmbeddingError("embed sentences", fmt.Errorf("got %d embeddings for %d sentences", len(vecs), len(buffered)), false)
	}

	distances := make([]float64, len(vecs)-1)
	for i := range distances {
		distances[i] = 1 - utils.CosineSimilarity(vecs[i], vecs[i+1])
	}
	threshold := percentile(distances, c.percentile)

	var segments []string
	start := 0
	for i, d := range distances {
		if d > threshold {
			segments = append(segments, strings.Join(sentences[start:i+1], " "))
			start = i + 1
		}
	}
	if start < len(sentences) {
		segments = append(segments, strings.Join(sentences[start:], " "))
	}
	return segments, nil
}

// splitSentences splits text after '.', '?' or '!' when followed by
// whitespace. The whitespace is dropped; empty pieces are skipped.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		switch text[i] {
		case '.', '?', '!':
			j := i + 1
			for j < len(text) {
				r, size := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(r) {
					break
				}
				j += size
			}
			if j > i+1 {
				if s := text[start : i+1]; s != "" {
					out = append(out, s)
				}
				start, i = j, j
				continue
			}
		}
		i++
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// percentile returns the p-th percentile of values using linear
// interpolation between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}
