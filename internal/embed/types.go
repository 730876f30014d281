// Package embed provides the embedding model boundary.
//
// Model backends are external processes reached over HTTP; each embedder
// handle is an expensive process-wide singleton and calls into it are
// serialized because backends are not assumed reentrant. Handles are
// created through the factory and injected explicitly, never reached via
// ambient globals.
package embed

import (
	"context"
	"time"

	"github.com/ragtime-dev/ragtime/internal/chunk"
	"github.com/ragtime-dev/ragtime/internal/token"
)

// Common embedding constants.
const (
	// DefaultBatchSize is the default batch size for embedding requests.
	DefaultBatchSize = 32

	// MaxBatchSize caps batch size to prevent memory exhaustion.
	MaxBatchSize = 256

	// DefaultTimeout is the default timeout for embedding requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts.
	DefaultMaxRetries = 3

	// DefaultDimensions is the dimension of the default embedding model.
	DefaultDimensions = 1024

	// DefaultContextTokens is the context window of the default embedding
	// model; document text is chunked against this limit.
	DefaultContextTokens = chunk.DefaultMaxTokens
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension. Similarity comparisons
	// are only valid between vectors from the same embedder.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Tokenizer returns the tokenizer used for chunking and budgeting
	// against this model's context window.
	Tokenizer() token.Tokenizer

	// ContextTokens returns the model context limit in tokens.
	ContextTokens() int

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// EmbedDocument embeds an arbitrarily long text by chunking it against the
// embedder's context window. The result is always a non-empty ordered
// vector sequence; a text that fits one chunk yields a single-element
// sequence. Chunk order matches reading order.
func EmbedDocument(ctx context.Context, e Embedder, text string) ([][]float32, error) {
	segments, err := chunk.Split(text, e.Tokenizer(), e.ContextTokens())
	if err != nil {
		return nil, err
	}
	return e.EmbedBatch(ctx, segments)
}
