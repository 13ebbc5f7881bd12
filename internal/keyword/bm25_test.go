package keyword

import (
	"math"
	"testing"

	"github.com/hyperjump/scholar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunks(contents ...string) []models.Chunk {
	out := make([]models.Chunk, len(contents))
	for i, c := range contents {
		out[i] = models.Chunk{Content: c, Metadata: models.ChunkMetadata{SourceID: "doc", PageNumber: 1, ChunkIndex: i}}
	}
	return out
}

func TestBuild_statistics(t *testing.T) {
	idx := Build(chunks("a b", "a c", "d"), DefaultParams())

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []int{2, 2, 1}, idx.DocLens)
	assert.InDelta(t, 5.0/3.0, idx.AvgDocLen, 1e-12)
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, idx.TermFreqs[0])

	rare := math.Log(2.5) - math.Log(1.5) // df=1, N=3
	common := math.Log(1.5) - math.Log(2.5)
	meanIDF := (common + 3*rare) / 4
	assert.InDelta(t, rare, idx.IDF["b"], 1e-12)
	assert.InDelta(t, rare, idx.IDF["d"], 1e-12)
	assert.InDelta(t, 0.25*meanIDF, idx.IDF["a"], 1e-12, "negative idf is floored to epsilon * mean idf")
}

func TestScores_handComputed(t *testing.T) {
	idx := Build(chunks("a b", "a c", "d"), DefaultParams())
	k1, b := 1.5, 0.75
	avgdl := 5.0 / 3.0
	idfB := math.Log(2.5) - math.Log(1.5)

	scores := idx.Scores([]string{"b"})
	want := idfB * (1 * (k1 + 1)) / (1 + k1*(1-b+b*2/avgdl))
	assert.InDelta(t, want, scores[0], 1e-12)
	assert.Zero(t, scores[1])
	assert.Zero(t, scores[2])

	// repeated query terms count once per occurrence
	twice := idx.Scores([]string{"b", "b"})
	assert.InDelta(t, 2*want, twice[0], 1e-12)

	// unknown terms contribute nothing
	assert.Equal(t, []float64{0, 0, 0}, idx.Scores([]string{"zzz"}))
}

func TestScores_shorterDocumentWins(t *testing.T) {
	idx := Build(chunks("x filler filler filler", "x", "y"), DefaultParams())
	scores := idx.Scores(Tokenize("x"))
	assert.Greater(t, scores[1], scores[0])
}

func TestTopK(t *testing.T) {
	idx := Build(chunks("a b", "a c", "d"), DefaultParams())

	got := idx.TopK("a", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a b", got[0].Content, "ties go to the lower chunk index")
	assert.Equal(t, "a c", got[1].Content)
	assert.Equal(t, got[0].Score, got[1].Score)

	got = idx.TopK("d", 3)
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].Content)
	assert.Equal(t, "a b", got[1].Content, "zero scores keep chunk order")
	assert.Zero(t, got[2].Score)

	assert.Len(t, idx.TopK("d", 10), 3)
	assert.Empty(t, idx.TopK("d", 0))
}

func TestTopK_caseSensitive(t *testing.T) {
	idx := Build(chunks("Transformer models", "transformer models", "other"), DefaultParams())
	got := idx.TopK("Transformer", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "Transformer models", got[0].Content)
}

func TestBuild_empty(t *testing.T) {
	idx := Build(nil, DefaultParams())
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Scores([]string{"a"}))
	assert.Empty(t, idx.TopK("a", 5))

	blank := Build(chunks("", ""), DefaultParams())
	assert.Equal(t, []float64{0, 0}, blank.Scores([]string{"a"}))
	assert.Len(t, blank.TopK("a", 5), 2)
}

func TestBuild_copiesChunks(t *testing.T) {
	in := chunks("a", "b")
	idx := Build(in, DefaultParams())
	in[0].Content = "mutated"
	assert.Equal(t, "a", idx.Chunks[0].Content)
}
