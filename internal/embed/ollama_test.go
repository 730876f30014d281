package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
)

// newEmbedServer returns a test server that answers /api/tags and /api/embed,
// producing a fixed-dimension vector per input whose first component encodes
// the input length.
func newEmbedServer(t *testing.T, dims int, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/embed":
			if requests != nil {
				requests.Add(1)
			}
			var req ollamaEmbedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			var inputs []string
			switch v := req.Input.(type) {
			case string:
				inputs = []string{v}
			case []any:
				for _, item := range v {
					inputs = append(inputs, item.(string))
				}
			}

			vecs := make([][]float32, len(inputs))
			for i, in := range inputs {
				vec := make([]float32, dims)
				vec[0] = float32(len(in))
				vecs[i] = vec
			}
			resp := ollamaEmbedResponse{Model: req.Model, Embeddings: vecs}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaEmbedderEmbed(t *testing.T) {
	server := newEmbedServer(t, 4, nil)
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: server.URL})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, 4)
	assert.Equal(t, float32(5), vec[0])
}

func TestOllamaEmbedderDetectsDimensions(t *testing.T) {
	server := newEmbedServer(t, 7, nil)
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: server.URL})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, 7, e.Dimensions())
}

func TestOllamaEmbedderBatchSplitting(t *testing.T) {
	var requests atomic.Int64
	server := newEmbedServer(t, 4, &requests)
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:            server.URL,
		Dimensions:      4,
		BatchSize:       2,
		SkipHealthCheck: true,
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 5)

	// 5 texts at batch size 2 means 3 API calls.
	assert.Equal(t, int64(3), requests.Load())
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vecs[i][0])
	}
}

func TestOllamaEmbedderWhitespaceZeroVectors(t *testing.T) {
	var requests atomic.Int64
	server := newEmbedServer(t, 4, &requests)
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:            server.URL,
		Dimensions:      4,
		SkipHealthCheck: true,
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{"  ", "real text", "\t\n"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, make([]float32, 4), vecs[0])
	assert.Equal(t, float32(9), vecs[1][0])
	assert.Equal(t, make([]float32, 4), vecs[2])
	assert.Equal(t, int64(1), requests.Load())
}

func TestOllamaEmbedderAllWhitespace(t *testing.T) {
	var requests atomic.Int64
	server := newEmbedServer(t, 4, &requests)
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:            server.URL,
		Dimensions:      4,
		SkipHealthCheck: true,
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{"", "   "})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, int64(0), requests.Load())
}

func TestOllamaEmbedderClosed(t *testing.T) {
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:            "http://localhost:0",
		Dimensions:      4,
		SkipHealthCheck: true,
	})
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close()) // idempotent

	_, err = e.EmbedBatch(context.Background(), []string{"text"})
	assert.Error(t, err)
}

func TestOllamaEmbedderUnreachableHost(t *testing.T) {
	_, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host: "http://127.0.0.1:1",
	})
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeModelUnavailable, ragerr.GetCode(err))
}

func TestOllamaEmbedderDefaults(t *testing.T) {
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Dimensions:      8,
		SkipHealthCheck: true,
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, DefaultOllamaModel, e.ModelName())
	assert.Equal(t, DefaultContextTokens, e.ContextTokens())
	assert.NotNil(t, e.Tokenizer())
}
