package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertIfAbsentInsertsNew(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.UpsertIfAbsent(ctx, Document{
		SourceType: SourceTypeWeb,
		Source:     "https://example.com/page",
		Content:    "page content",
		Vectors:    [][]float32{{0.1, 0.2}, {0.3, 0.4}},
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	count, err := s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertIfAbsentSkipsDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := Document{
		SourceType: SourceTypeFile,
		Source:     "notes.txt",
		Content:    "original",
		Vectors:    [][]float32{{1}},
	}
	inserted, err := s.UpsertIfAbsent(ctx, doc)
	require.NoError(t, err)
	require.True(t, inserted)

	doc.Content = "changed"
	inserted, err = s.UpsertIfAbsent(ctx, doc)
	require.NoError(t, err)
	assert.False(t, inserted)

	// First write wins.
	docs, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "original", docs[0].Content)
}

func TestLoadAllRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	vectors := [][]float32{{0.5, -0.25, 1}, {0, 0, 0}}
	_, err := s.UpsertIfAbsent(ctx, Document{
		SourceType: SourceTypeWeb,
		Source:     "https://example.com/a",
		Content:    "alpha",
		Vectors:    vectors,
	})
	require.NoError(t, err)
	_, err = s.UpsertIfAbsent(ctx, Document{
		SourceType: SourceTypeFile,
		Source:     "b.txt",
		Content:    "beta",
		Vectors:    [][]float32{{1, 1, 1}},
	})
	require.NoError(t, err)

	docs, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Insertion order preserved.
	assert.Equal(t, "https://example.com/a", docs[0].Source)
	assert.Equal(t, vectors, docs[0].Vectors)
	assert.Equal(t, "b.txt", docs[1].Source)
	assert.Equal(t, SourceTypeFile, docs[1].SourceType)
}

func TestLoadAllEmpty(t *testing.T) {
	s := openTestStore(t)

	docs, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDecodeVectorsLegacyFlat(t *testing.T) {
	vecs, err := decodeVectors("[0.25, 0.5]")
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.25, 0.5}}, vecs)
}

func TestDecodeVectorsInvalid(t *testing.T) {
	_, err := decodeVectors("not json")
	assert.Error(t, err)
}

func TestHasSource(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertIfAbsent(ctx, Document{
		SourceType: SourceTypeWeb,
		Source:     "https://example.com",
		Content:    "c",
		Vectors:    [][]float32{{1}},
	})
	require.NoError(t, err)

	has, err := s.HasSource(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasSource(ctx, "https://example.com/other")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListSources(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, doc := range []Document{
		{SourceType: SourceTypeWeb, Source: "https://example.com", Content: "a", Vectors: [][]float32{{1}}},
		{SourceType: SourceTypeFile, Source: "b.txt", Content: "b", Vectors: [][]float32{{2}}},
	} {
		_, err := s.UpsertIfAbsent(ctx, doc)
		require.NoError(t, err)
	}

	sources, err := s.ListSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SourceInfo{
		{Type: SourceTypeWeb, Source: "https://example.com"},
		{Type: SourceTypeFile, Source: "b.txt"},
	}, sources)
}

func TestDeleteSource(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertIfAbsent(ctx, Document{
		SourceType: SourceTypeFile, Source: "gone.txt", Content: "x", Vectors: [][]float32{{1}},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteSource(ctx, "gone.txt"))
	require.NoError(t, s.DeleteSource(ctx, "never-existed.txt"))

	count, err := s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
