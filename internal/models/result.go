package models

import "fmt"

// DefaultTopK is the number of chunks returned when the caller does not ask for a count.
const DefaultTopK = 5

// SearchQuery is a retrieval request.
type SearchQuery struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// Validate rejects empty queries and negative counts and fills in the default top_k.
// An explicit top_k of 0 is kept: it yields an empty result.
func (q *SearchQuery) Validate(defaultTopK, maxTopK int) (int, error) {
	if q.Query == "" {
		return 0, fmt.Errorf("query cannot be empty")
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	if q.TopK == nil {
		return defaultTopK, nil
	}
	k := *q.TopK
	if k < 0 {
		return 0, fmt.Errorf("top_k must not be negative, got %d", k)
	}
	if maxTopK > 0 && k > maxTopK {
		k = maxTopK
	}
	return k, nil
}

// RetrievalResult is the ranked, deduplicated chunk list for one query.
type RetrievalResult struct {
	Query     string  `json:"query"`
	Chunks    []Chunk `json:"chunks"`
	QueryTime int64   `json:"query_time_ms"`
	// SemanticHits and LexicalHits count what each index returned before merging.
	SemanticHits int `json:"semantic_hits"`
	LexicalHits  int `json:"lexical_hits"`
}

// AskResponse is a generated answer with the chunks it was grounded on.
type AskResponse struct {
	Query   string  `json:"query"`
	Answer  string  `json:"answer"`
	Sources []Chunk `json:"sources"`
}
