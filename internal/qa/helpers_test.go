package qa

import (
	"context"
	"fmt"

	"github.com/ragtime-dev/ragtime/internal/gen"
	"github.com/ragtime-dev/ragtime/internal/token"
)

// stubEmbedder returns fixed vectors keyed by exact text match, with a
// fallback vector for everything else.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	dims     int
}

func newStubEmbedder(dims int) *stubEmbedder {
	fallback := make([]float32, dims)
	fallback[0] = 1
	return &stubEmbedder{
		vectors:  map[string][]float32{},
		fallback: fallback,
		dims:     dims,
	}
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return s.fallback, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int                    { return s.dims }
func (s *stubEmbedder) ModelName() string                  { return "stub-embed" }
func (s *stubEmbedder) Tokenizer() token.Tokenizer         { return token.NewWordTokenizer() }
func (s *stubEmbedder) ContextTokens() int                 { return 512 }
func (s *stubEmbedder) Available(ctx context.Context) bool { return true }
func (s *stubEmbedder) Close() error                       { return nil }

// stubGenerator replies with a canned response, or via the reply
// function when set. It records every message sequence it was called
// with.
type stubGenerator struct {
	response string
	reply    func(messages []gen.Message) (string, error)
	failWith error
	calls    [][]gen.Message
}

func (s *stubGenerator) Generate(ctx context.Context, messages []gen.Message) (string, error) {
	copied := make([]gen.Message, len(messages))
	copy(copied, messages)
	s.calls = append(s.calls, copied)

	if s.failWith != nil {
		return "", s.failWith
	}
	if s.reply != nil {
		return s.reply(messages)
	}
	if s.response != "" {
		return s.response, nil
	}
	return fmt.Sprintf("reply %d", len(s.calls)), nil
}

func (s *stubGenerator) ModelName() string                  { return "stub-gen" }
func (s *stubGenerator) Available(ctx context.Context) bool { return true }
func (s *stubGenerator) Close() error                       { return nil }
