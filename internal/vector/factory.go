package vector

import "fmt"

// IndexType represents the type of in-memory search structure.
type IndexType string

const (
	// IndexTypeMemory uses exact brute-force search. Good for small corpora (<10k chunks).
	IndexTypeMemory IndexType = "memory"
	// IndexTypeHNSW uses an approximate HNSW graph. Good for large corpora.
	IndexTypeHNSW IndexType = "hnsw"
)

// NewIndex creates an index of the specified type. m and efSearch only apply to HNSW.
func NewIndex(indexType string, dimensions, m, efSearch int) (Index, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	case IndexTypeHNSW:
		return NewHNSWIndex(dimensions, m, efSearch)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, hnsw)", indexType)
	}
}
