package vector

import (
	"context"
	"testing"
)

func TestMemoryIndex_AddSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := idx.Add(ctx, []uint64{1, 2, 3}, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len=%d", idx.Len())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Key != 1 || results[1].Key != 2 {
		t.Errorf("got keys %d, %d; want 1, 2", results[0].Key, results[1].Key)
	}
}

func TestMemoryIndex_tiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []uint64{7, 3, 5}, [][]float32{{1, 0}, {1, 0}, {1, 0}})

	results, err := idx.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []uint64{7, 3, 5} {
		if results[i].Key != want {
			t.Errorf("results[%d].Key = %d, want %d", i, results[i].Key, want)
		}
	}
}

func TestMemoryIndex_edgeCases(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	if res, err := idx.Search(ctx, []float32{1, 0}, 5); err != nil || len(res) != 0 {
		t.Errorf("empty index: got %v, %v", res, err)
	}
	if _, err := idx.Search(ctx, []float32{1, 0, 0}, 1); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if err := idx.Add(ctx, []uint64{1}, [][]float32{{1, 0, 0}}); err == nil {
		t.Error("expected dimension mismatch on add")
	}
	if err := idx.Add(ctx, []uint64{1, 2}, [][]float32{{1, 0}}); err == nil {
		t.Error("expected length mismatch on add")
	}
	_ = idx.Add(ctx, []uint64{1}, [][]float32{{1, 0}})
	if res, _ := idx.Search(ctx, []float32{1, 0}, 0); len(res) != 0 {
		t.Errorf("k=0 should return nothing, got %v", res)
	}
	if res, _ := idx.Search(ctx, []float32{1, 0}, 10); len(res) != 1 {
		t.Errorf("k larger than index should return all, got %d", len(res))
	}
}

func TestMemoryIndex_copiesVectors(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	v := []float32{1, 0}
	_ = idx.Add(ctx, []uint64{1}, [][]float32{v})
	v[0] = -1

	res, _ := idx.Search(ctx, []float32{1, 0}, 1)
	if res[0].Score <= 0 {
		t.Errorf("index should hold its own copy, score=%f", res[0].Score)
	}
}
