package indexer

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/scholar/internal/models"
)

// defaultSeparators are tried in order: paragraphs, lines, words, characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts segments into overlapping windows of at most windowSize
// characters, preferring to break at the coarsest separator that works.
// Lengths are measured in runes.
type Splitter struct {
	windowSize int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter. overlap must be smaller than windowSize.
func NewSplitter(windowSize, overlap int) *Splitter {
	if overlap >= windowSize {
		overlap = windowSize / 5
	}
	return &Splitter{windowSize: windowSize, overlap: max(0, overlap), separators: defaultSeparators}
}

// Split turns segments into chunks, carrying each segment's source and page
// and numbering chunks from 0 across the whole input.
func (s *Splitter) Split(segments []models.Segment) []models.Chunk {
	var chunks []models.Chunk
	for _, seg := range segments {
		for _, text := range s.SplitText(seg.Content) {
			chunks = append(chunks, models.Chunk{
				Content: text,
				Metadata: models.ChunkMetadata{
					SourceID:   seg.SourceID,
					PageNumber: seg.PageNumber,
					ChunkIndex: len(chunks),
				},
			})
		}
	}
	return chunks
}

// SplitText splits one text. Pieces are whitespace-trimmed and never empty.
func (s *Splitter) SplitText(text string) []string {
	return s.splitText(text, s.separators)
}

func (s *Splitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var final, good []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if runeLen(piece) < s.windowSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			if t := strings.TrimSpace(piece); t != "" {
				final = append(final, t)
			}
		} else {
			final = append(final, s.splitText(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge packs pieces into windows. When a window is full, pieces are dropped
// from its front until at most overlap characters remain and the next piece
// fits, so consecutive windows share up to overlap characters.
func (s *Splitter) merge(pieces []string) []string {
	var docs, current []string
	total := 0
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.windowSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total+n > s.windowSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepSeparator splits text on sep, attaching each separator to the
// start of the piece that follows it. An empty sep splits into runes.
func splitKeepSeparator(text, sep string) []string {
	var out []string
	if sep == "" {
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
