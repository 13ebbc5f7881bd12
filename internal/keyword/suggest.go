package keyword

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Suggester proposes corrections for query terms that do not occur in the
// lexical index vocabulary. Matching is exact, like BM25 scoring, so a
// lowercase "transformer" can be corrected to a vocabulary "Transformer".
type Suggester struct {
	terms       []string // sorted vocabulary
	docFreq     map[string]int
	maxDistance int
}

// SuggesterOption is a functional option for configuring Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// NewSuggester builds a suggester over the vocabulary of idx.
func NewSuggester(idx *BM25Index, opts ...SuggesterOption) *Suggester {
	s := &Suggester{docFreq: make(map[string]int), maxDistance: 2}
	for _, freqs := range idx.TermFreqs {
		for t := range freqs {
			s.docFreq[t]++
		}
	}
	s.terms = make([]string, 0, len(s.docFreq))
	for t := range s.docFreq {
		s.terms = append(s.terms, t)
	}
	sort.Strings(s.terms)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns the best vocabulary term for term, or "" when term is
// already known or nothing is close enough. Closer terms win, then terms
// appearing in more chunks, then lexicographic order.
func (s *Suggester) Suggest(term string) string {
	if _, ok := s.docFreq[term]; ok {
		return ""
	}
	n := utf8.RuneCountInString(term)
	best, bestDist, bestFreq := "", s.maxDistance+1, 0
	for _, cand := range s.terms {
		if d := utf8.RuneCountInString(cand) - n; d > s.maxDistance || -d > s.maxDistance {
			continue
		}
		dist := LevenshteinDistance(term, cand)
		if dist >= len([]rune(cand)) {
			continue
		}
		freq := s.docFreq[cand]
		if dist < bestDist || (dist == bestDist && freq > bestFreq) {
			best, bestDist, bestFreq = cand, dist, freq
		}
	}
	return best
}

// CorrectQuery replaces every unknown query term with its suggestion. It
// returns "" when no term changed.
func (s *Suggester) CorrectQuery(query string) string {
	terms := Tokenize(query)
	changed := false
	for i, t := range terms {
		if sug := s.Suggest(t); sug != "" {
			terms[i] = sug
			changed = true
		}
	}
	if !changed {
		return ""
	}
	return strings.Join(terms, " ")
}
