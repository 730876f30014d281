package embed

import (
	"context"
	"fmt"
	"time"
)

// FactoryConfig selects and configures an embedding backend.
type FactoryConfig struct {
	// Provider selects the backend ("ollama" is the only supported one).
	Provider string

	// Host is the backend endpoint.
	Host string

	// Model is the embedding model name.
	Model string

	// Dimensions overrides auto-detection when non-zero.
	Dimensions int

	// ContextTokens is the model context window.
	ContextTokens int

	// BatchSize for batch requests.
	BatchSize int

	// CacheSize is the number of embeddings kept in the LRU cache.
	// Zero uses the default; negative disables caching.
	CacheSize int

	// Timeout for API requests.
	Timeout time.Duration
}

// NewEmbedder builds the configured embedder, wrapped with an LRU cache
// unless caching is disabled. The returned handle is intended to be a
// process-wide singleton; creating one is expensive (backend health check,
// dimension probe).
func NewEmbedder(ctx context.Context, cfg FactoryConfig) (Embedder, error) {
	if cfg.Provider == "" {
		cfg.Provider = "ollama"
	}

	var inner Embedder
	switch cfg.Provider {
	case "ollama":
		e, err := NewOllamaEmbedder(ctx, OllamaConfig{
			Host:          cfg.Host,
			Model:         cfg.Model,
			Dimensions:    cfg.Dimensions,
			ContextTokens: cfg.ContextTokens,
			BatchSize:     cfg.BatchSize,
			Timeout:       cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		inner = e
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}

	if cfg.CacheSize < 0 {
		return inner, nil
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
