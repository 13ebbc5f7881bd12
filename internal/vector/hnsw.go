package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/hnsw"
)

// HNSWIndex is an approximate index backed by a coder/hnsw graph. It trades
// exactness for sub-linear search on large corpora.
type HNSWIndex struct {
	dimensions int
	graph      *hnsw.Graph[uint64]
	mu         sync.RWMutex
}

// NewHNSWIndex creates an HNSW graph using cosine distance. Zero m or
// efSearch select the library defaults.
func NewHNSWIndex(dimensions, m, efSearch int) (*HNSWIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	if m > 0 {
		graph.M = m
	}
	if efSearch > 0 {
		graph.EfSearch = efSearch
	}
	graph.Ml = 0.25
	return &HNSWIndex{dimensions: dimensions, graph: graph}, nil
}

// Add inserts vectors into the graph.
func (h *HNSWIndex) Add(ctx context.Context, keys []uint64, vectors [][]float32) error {
	if len(keys) != len(vectors) {
		return fmt.Errorf("keys and vectors length mismatch: %d vs %d", len(keys), len(vectors))
	}
	nodes := make([]hnsw.Node[uint64], len(keys))
	for i, key := range keys {
		if len(vectors[i]) != h.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), h.dimensions)
		}
		vec := make([]float32, h.dimensions)
		copy(vec, vectors[i])
		nodes[i] = hnsw.MakeNode(key, vec)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.graph.Add(nodes...)
	return nil
}

// Search returns up to k approximate nearest neighbours, most similar first.
func (h *HNSWIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != h.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), h.dimensions)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if k <= 0 || h.graph.Len() == 0 {
		return nil, nil
	}
	nodes := h.graph.Search(query, k)
	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		results = append(results, Result{
			Key:   node.Key,
			Score: 1 - float64(h.graph.Distance(query, node.Value)),
		})
	}
	return results, nil
}

// Len returns the number of nodes in the graph.
func (h *HNSWIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.graph.Len()
}

// Close is a no-op; the graph is garbage collected.
func (h *HNSWIndex) Close() error {
	return nil
}
