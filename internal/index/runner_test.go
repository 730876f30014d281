package index

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtime-dev/ragtime/internal/store"
	"github.com/ragtime-dev/ragtime/internal/token"
)

// fakeEmbedder produces a fixed-dimension vector per chunk without any
// backend.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = f.Embed(ctx, t)
	}
	return out, nil
}

func (fakeEmbedder) Dimensions() int                    { return 2 }
func (fakeEmbedder) ModelName() string                  { return "fake" }
func (fakeEmbedder) Tokenizer() token.Tokenizer         { return token.NewWordTokenizer() }
func (fakeEmbedder) ContextTokens() int                 { return 512 }
func (fakeEmbedder) Available(ctx context.Context) bool { return true }
func (fakeEmbedder) Close() error                       { return nil }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeDataFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunIndexesLinksAndFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>web page content</body></html>"))
	}))
	defer server.Close()

	dataDir := t.TempDir()
	writeDataFile(t, filepath.Join(dataDir, "links", "urls.txt"), server.URL+"/page\n")
	writeDataFile(t, filepath.Join(dataDir, "doc.txt"), "local file content")

	s := newTestStore(t)
	runner := NewRunner(s, fakeEmbedder{}, nil, nil, 2)

	result, err := runner.Run(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	docs, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, store.SourceTypeWeb, docs[0].SourceType)
	assert.Equal(t, server.URL+"/page", docs[0].Source)
	assert.Equal(t, "web page content", docs[0].Content)
	assert.Equal(t, store.SourceTypeFile, docs[1].SourceType)
	assert.Equal(t, "doc.txt", docs[1].Source)
}

func TestRunIndexesSameFilenameInDifferentDirs(t *testing.T) {
	dataDir := t.TempDir()
	writeDataFile(t, filepath.Join(dataDir, "guides", "readme.txt"), "guide content")
	writeDataFile(t, filepath.Join(dataDir, "policies", "readme.txt"), "policy content")

	s := newTestStore(t)
	runner := NewRunner(s, fakeEmbedder{}, nil, nil, 1)

	result, err := runner.Run(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 0, result.Skipped)

	docs, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	sources := []string{docs[0].Source, docs[1].Source}
	assert.ElementsMatch(t, []string{"guides/readme.txt", "policies/readme.txt"}, sources)
}

func TestRunIsIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	writeDataFile(t, filepath.Join(dataDir, "doc.txt"), "content")

	s := newTestStore(t)
	runner := NewRunner(s, fakeEmbedder{}, nil, nil, 1)

	first, err := runner.Run(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Indexed)

	second, err := runner.Run(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Indexed)
	assert.Equal(t, 1, second.Skipped)

	count, err := s.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunSkipsFailedFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good" {
			_, _ = w.Write([]byte("good content"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	dataDir := t.TempDir()
	writeDataFile(t, filepath.Join(dataDir, "links", "urls.txt"),
		server.URL+"/good\n"+server.URL+"/missing\n")

	s := newTestStore(t)
	runner := NewRunner(s, fakeEmbedder{}, nil, nil, 2)

	result, err := runner.Run(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)
	assert.Equal(t, 1, result.Failed)
}

func TestRunSkipsInvalidEncoding(t *testing.T) {
	dataDir := t.TempDir()
	writeDataFile(t, filepath.Join(dataDir, "good.txt"), "valid text")
	writeDataFile(t, filepath.Join(dataDir, "bad.bin"), "broken \xff\xfe bytes")

	s := newTestStore(t)
	runner := NewRunner(s, fakeEmbedder{}, nil, nil, 1)

	result, err := runner.Run(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)
	assert.Equal(t, 1, result.Failed)
}

func TestRunEmptyDataDir(t *testing.T) {
	s := newTestStore(t)
	runner := NewRunner(s, fakeEmbedder{}, nil, nil, 1)

	result, err := runner.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Indexed)
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	dataDir := t.TempDir()
	lock := store.NewIndexLock(dataDir)
	require.NoError(t, lock.Lock())
	defer func() { _ = lock.Unlock() }()

	s := newTestStore(t)
	runner := NewRunner(s, fakeEmbedder{}, nil, nil, 1)

	_, err := runner.Run(context.Background(), dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")
}
