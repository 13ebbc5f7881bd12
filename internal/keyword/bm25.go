// Package keyword builds and queries the lexical (BM25) index over chunks.
package keyword

import (
	"math"
	"sort"

	"github.com/hyperjump/scholar/internal/models"
)

// Params are the BM25 Okapi tuning constants.
type Params struct {
	K1      float64
	B       float64
	Epsilon float64 // floor for negative idf, as a fraction of the mean idf
}

// DefaultParams returns k1=1.5, b=0.75, epsilon=0.25.
func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75, Epsilon: 0.25}
}

// BM25Index holds corpus-global BM25 statistics together with the ordered
// chunk list they were computed from. Position i in TermFreqs, DocLens and
// Chunks always describes the same chunk.
type BM25Index struct {
	Params    Params
	TermFreqs []map[string]int
	DocLens   []int
	AvgDocLen float64
	IDF       map[string]float64
	Chunks    []models.Chunk
}

// Build tokenizes every chunk and computes BM25 statistics over the whole
// collection. The chunk slice is copied.
func Build(chunks []models.Chunk, params Params) *BM25Index {
	idx := &BM25Index{
		Params:    params,
		TermFreqs: make([]map[string]int, len(chunks)),
		DocLens:   make([]int, len(chunks)),
		IDF:       make(map[string]float64),
		Chunks:    append([]models.Chunk(nil), chunks...),
	}

	docFreq := make(map[string]int)
	total := 0
	for i, ch := range chunks {
		terms := Tokenize(ch.Content)
		freqs := make(map[string]int, len(terms))
		for _, t := range terms {
			freqs[t]++
		}
		for t := range freqs {
			docFreq[t]++
		}
		idx.TermFreqs[i] = freqs
		idx.DocLens[i] = len(terms)
		total += len(terms)
	}
	n := len(chunks)
	if n == 0 {
		return idx
	}
	idx.AvgDocLen = float64(total) / float64(n)

	var idfSum float64
	var negative []string
	for t, df := range docFreq {
		v := math.Log(float64(n-df)+0.5) - math.Log(float64(df)+0.5)
		idx.IDF[t] = v
		idfSum += v
		if v < 0 {
			negative = append(negative, t)
		}
	}
	if len(idx.IDF) > 0 {
		floor := params.Epsilon * idfSum / float64(len(idx.IDF))
		for _, t := range negative {
			idx.IDF[t] = floor
		}
	}
	return idx
}

// Len returns the number of indexed chunks.
func (idx *BM25Index) Len() int {
	return len(idx.Chunks)
}

// Scores returns the BM25 score of every chunk for the query terms, in chunk
// order. Repeated query terms contribute repeatedly.
func (idx *BM25Index) Scores(queryTerms []string) []float64 {
	scores := make([]float64, len(idx.Chunks))
	if idx.AvgDocLen == 0 {
		return scores
	}
	k1, b := idx.Params.K1, idx.Params.B
	for _, q := range queryTerms {
		idf, ok := idx.IDF[q]
		if !ok {
			continue
		}
		for i, freqs := range idx.TermFreqs {
			f := float64(freqs[q])
			if f == 0 {
				continue
			}
			norm := k1 * (1 - b + b*float64(idx.DocLens[i])/idx.AvgDocLen)
			scores[i] += idf * f * (k1 + 1) / (f + norm)
		}
	}
	return scores
}

// TopK scores every chunk against query and returns the k best, highest
// score first, ties going to the earlier chunk. Chunks scoring zero are
// still returned when fewer than k chunks match.
func (idx *BM25Index) TopK(query string, k int) []models.ScoredChunk {
	if k <= 0 || len(idx.Chunks) == 0 {
		return nil
	}
	scores := idx.Scores(Tokenize(query))
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if k > len(order) {
		k = len(order)
	}
	out := make([]models.ScoredChunk, k)
	for i, pos := range order[:k] {
		out[i] = models.ScoredChunk{Chunk: idx.Chunks[pos], Score: scores[pos]}
	}
	return out
}
