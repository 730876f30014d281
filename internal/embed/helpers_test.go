package embed

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ragtime-dev/ragtime/internal/token"
)

// mockEmbedder is a test double that counts calls.
type mockEmbedder struct {
	embedCalls    atomic.Int64
	batchCalls    atomic.Int64
	dimensions    int
	contextTokens int
	modelName     string
	failing       bool
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{
		dimensions:    dims,
		contextTokens: DefaultContextTokens,
		modelName:     "mock-model",
	}
}

// vectorFor derives a deterministic per-text vector so cache hits are
// distinguishable from fresh computations.
func (m *mockEmbedder) vectorFor(text string) []float32 {
	vec := make([]float32, m.dimensions)
	for i := range vec {
		vec[i] = float32(len(text)%7) + float32(i)*0.001
	}
	return vec
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.failing {
		return nil, fmt.Errorf("mock embed failure")
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	if m.failing {
		return nil, fmt.Errorf("mock embed failure")
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = m.vectorFor(t)
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int               { return m.dimensions }
func (m *mockEmbedder) ModelName() string             { return m.modelName }
func (m *mockEmbedder) Tokenizer() token.Tokenizer    { return token.NewWordTokenizer() }
func (m *mockEmbedder) ContextTokens() int            { return m.contextTokens }
func (m *mockEmbedder) Available(ctx context.Context) bool { return true }
func (m *mockEmbedder) Close() error                  { return nil }
