// Package qa implements the question-answering pipeline: retrieval over
// stored embeddings, context assembly, and prompt dispatch.
package qa

import (
	"math"
	"sort"

	"github.com/ragtime-dev/ragtime/internal/store"
)

// Retrieval defaults.
const (
	// DefaultTopK is the default number of documents to retrieve.
	DefaultTopK = 3

	// DefaultMinSimilarity is the relevance floor; documents scoring
	// below it are discarded entirely.
	DefaultMinSimilarity = 0.3
)

// CosineSimilarity returns the cosine of the angle between two vectors.
// A zero-norm vector (or mismatched dimensions) scores 0 rather than
// dividing by zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// documentScore is the best similarity over a document's chunk vectors:
// a document is relevant if any chunk matches well.
func documentScore(query []float32, vectors [][]float32) float64 {
	best := math.Inf(-1)
	for _, vec := range vectors {
		if sim := CosineSimilarity(query, vec); sim > best {
			best = sim
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// ScoredDocument pairs a document with its similarity score.
type ScoredDocument struct {
	Document store.Document
	Score    float64
}

// Retrieve scores every document against the query embedding, discards
// those below minSimilarity, and returns at most topK documents sorted by
// score descending. Ties keep store order, so results are deterministic.
// An empty result is a valid outcome, not an error.
func Retrieve(queryEmbedding []float32, docs []store.Document, topK int, minSimilarity float64) []ScoredDocument {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var scored []ScoredDocument
	for _, doc := range docs {
		score := documentScore(queryEmbedding, doc.Vectors)
		if score < minSimilarity {
			continue
		}
		scored = append(scored, ScoredDocument{Document: doc, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
