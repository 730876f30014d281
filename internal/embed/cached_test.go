package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedEmbedderHitsCache(t *testing.T) {
	mock := newMockEmbedder(8)
	cached := NewCachedEmbedder(mock, 10)

	ctx := context.Background()
	first, err := cached.Embed(ctx, "hello world")
	require.NoError(t, err)

	second, err := cached.Embed(ctx, "hello world")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), mock.embedCalls.Load())
}

func TestCachedEmbedderDistinctTexts(t *testing.T) {
	mock := newMockEmbedder(8)
	cached := NewCachedEmbedder(mock, 10)

	ctx := context.Background()
	_, err := cached.Embed(ctx, "first")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, int64(2), mock.embedCalls.Load())
}

func TestCachedEmbedderBatchPartialHit(t *testing.T) {
	mock := newMockEmbedder(8)
	cached := NewCachedEmbedder(mock, 10)

	ctx := context.Background()
	_, err := cached.Embed(ctx, "warm")
	require.NoError(t, err)

	vecs, err := cached.EmbedBatch(ctx, []string{"warm", "cold"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	// Only the miss went to the backend.
	assert.Equal(t, int64(1), mock.batchCalls.Load())
	assert.Equal(t, mock.vectorFor("warm"), vecs[0])
	assert.Equal(t, mock.vectorFor("cold"), vecs[1])
}

func TestCachedEmbedderBatchAllCached(t *testing.T) {
	mock := newMockEmbedder(8)
	cached := NewCachedEmbedder(mock, 10)

	ctx := context.Background()
	_, err := cached.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)

	_, err = cached.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), mock.batchCalls.Load())
}

func TestCachedEmbedderEmptyBatch(t *testing.T) {
	cached := NewCachedEmbedder(newMockEmbedder(8), 10)

	vecs, err := cached.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestCachedEmbedderErrorNotCached(t *testing.T) {
	mock := newMockEmbedder(8)
	mock.failing = true
	cached := NewCachedEmbedder(mock, 10)

	_, err := cached.Embed(context.Background(), "boom")
	require.Error(t, err)

	mock.failing = false
	_, err = cached.Embed(context.Background(), "boom")
	require.NoError(t, err)
	assert.Equal(t, int64(2), mock.embedCalls.Load())
}

func TestCachedEmbedderPassthrough(t *testing.T) {
	mock := newMockEmbedder(16)
	cached := NewCachedEmbedder(mock, 10)

	assert.Equal(t, 16, cached.Dimensions())
	assert.Equal(t, "mock-model", cached.ModelName())
	assert.Equal(t, DefaultContextTokens, cached.ContextTokens())
	assert.NotNil(t, cached.Tokenizer())
}
