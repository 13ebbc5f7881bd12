package config

import "time"

// Embedding providers.
const (
	ProviderCohere = "cohere"
	ProviderONNX   = "onnx"
	ProviderHash   = "hash"
)

// Vector index types.
const (
	IndexTypeMemory = "memory"
	IndexTypeHNSW   = "hnsw"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.VectorDir == "" {
		cfg.Storage.VectorDir = ".chroma"
	}
	if cfg.Storage.LexicalIndexPath == "" {
		cfg.Storage.LexicalIndexPath = "bm25.gob"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderCohere
	}
	if cfg.Embedding.Model == "" {
		switch cfg.Embedding.Provider {
		case ProviderCohere:
			cfg.Embedding.Model = "embed-english-v3.0"
		case ProviderONNX:
			cfg.Embedding.Model = "all-MiniLM-L6-v2"
		}
	}
	if cfg.Embedding.BaseURL == "" && cfg.Embedding.Provider == ProviderCohere {
		cfg.Embedding.BaseURL = "https://api.cohere.com"
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Provider {
		case ProviderCohere:
			cfg.Embedding.Dimensions = 1024
		default:
			cfg.Embedding.Dimensions = 384
		}
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 96
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 5
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Chunking.WindowSize == 0 {
		cfg.Chunking.WindowSize = 800
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 160
	}
	if cfg.Chunking.BreakpointPercentile == 0 {
		cfg.Chunking.BreakpointPercentile = 95
	}
	if cfg.Chunking.BufferSize == 0 {
		cfg.Chunking.BufferSize = 1
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = IndexTypeMemory
	}
	if cfg.Vector.M == 0 {
		cfg.Vector.M = 16
	}
	if cfg.Vector.EfSearch == 0 {
		cfg.Vector.EfSearch = 64
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = 5
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = 50
	}
	if cfg.Search.EmbedTimeout == 0 {
		cfg.Search.EmbedTimeout = 10 * time.Second
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "groq"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "deepseek-r1-distill-llama-70b"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 2 * time.Second
	}
}
