package embedding

import (
	"fmt"

	"github.com/hyperjump/scholar/internal/config"
)

// New builds the embedder selected by cfg.Provider, wrapped with a query cache.
// Retrying is left to ingestion, which wraps the result with NewRetryEmbedder.
func New(cfg *config.EmbeddingConfig) (*CachedEmbedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case config.ProviderCohere:
		e, err := NewCohereEmbedder(CohereConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		inner = e
	case config.ProviderONNX:
		e, err := NewONNXEmbedder(cfg.ModelPath, cfg.Model, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		inner = e
	case config.ProviderHash:
		inner = NewHashEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	cached, err := NewCachedEmbedder(inner, cfg.CacheSize)
	if err != nil {
		_ = inner.Close()
		return nil, err
	}
	return cached, nil
}
