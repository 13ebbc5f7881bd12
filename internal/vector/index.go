// Package vector stores chunk embeddings and answers nearest-neighbour queries.
package vector

import "context"

// Index is an in-memory nearest-neighbour structure over stored embeddings.
// Keys are store row ids; vectors are expected to be unit length.
type Index interface {
	Add(ctx context.Context, keys []uint64, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	Len() int
	Close() error
}

// Result is a single nearest-neighbour hit.
type Result struct {
	Key   uint64
	Score float64 // cosine similarity
}
