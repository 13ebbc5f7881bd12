// Package models defines the data passed between ingestion and retrieval.
package models

// RawPage is the text of one page of a source document, as produced by the loader.
type RawPage struct {
	Text       string `json:"text"`
	SourceID   string `json:"source_id"`
	PageNumber int    `json:"page_number"`
}

// Segment is a topically coherent run of sentences from a single page.
type Segment struct {
	Content    string `json:"content"`
	SourceID   string `json:"source_id"`
	PageNumber int    `json:"page_number"`
}

// ChunkMetadata records where a chunk came from.
type ChunkMetadata struct {
	SourceID   string `json:"source_id"`
	PageNumber int    `json:"page_number"`
	ChunkIndex int    `json:"chunk_index"`
}

// Chunk is the unit stored in both indexes. Two chunks with identical Content
// are treated as the same result regardless of metadata.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ScoredChunk is a chunk returned by one index together with that index's score.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}
