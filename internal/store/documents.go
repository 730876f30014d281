package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Source types.
const (
	SourceTypeWeb  = "web"
	SourceTypeFile = "file"
)

// Document is a stored document with its chunk embeddings.
type Document struct {
	ID         int64
	SourceType string
	Source     string
	Content    string
	Vectors    [][]float32
}

// encodeVectors serializes a chunk vector sequence for storage.
func encodeVectors(vecs [][]float32) (string, error) {
	data, err := json.Marshal(vecs)
	if err != nil {
		return "", fmt.Errorf("failed to encode embedding: %w", err)
	}
	return string(data), nil
}

// decodeVectors deserializes a stored vector sequence. Legacy rows holding
// a single flat vector decode into a one-element sequence.
func decodeVectors(data string) ([][]float32, error) {
	var vecs [][]float32
	if err := json.Unmarshal([]byte(data), &vecs); err == nil {
		return vecs, nil
	}

	var flat []float32
	if err := json.Unmarshal([]byte(data), &flat); err != nil {
		return nil, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return [][]float32{flat}, nil
}

// UpsertIfAbsent inserts a document unless one with the same source
// already exists. Returns true if the document was inserted, false if it
// was skipped as a duplicate.
func (s *Store) UpsertIfAbsent(ctx context.Context, doc Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, fmt.Errorf("store is closed")
	}

	embedding, err := encodeVectors(doc.Vectors)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE source = ?`, doc.Source).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (source_type, source, content, embedding) VALUES (?, ?, ?, ?)`,
		doc.SourceType, doc.Source, doc.Content, embedding)
	if err != nil {
		// A concurrent writer may have inserted between check and insert.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// HasSource reports whether a document with the given source exists.
func (s *Store) HasSource(ctx context.Context, source string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, fmt.Errorf("store is closed")
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE source = ?`, source).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query source: %w", err)
	}
	return count > 0, nil
}

// LoadAll returns every stored document in insertion order.
func (s *Store) LoadAll(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_type, source, content, embedding FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []Document
	for rows.Next() {
		var doc Document
		var embedding string
		if err := rows.Scan(&doc.ID, &doc.SourceType, &doc.Source, &doc.Content, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Vectors, err = decodeVectors(embedding)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.Source, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListSources returns the sources of all stored documents with their
// types, in insertion order.
func (s *Store) ListSources(ctx context.Context) ([]SourceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_type, source FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []SourceInfo
	for rows.Next() {
		var info SourceInfo
		if err := rows.Scan(&info.Type, &info.Source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, info)
	}
	return sources, rows.Err()
}

// SourceInfo identifies an indexed document.
type SourceInfo struct {
	Type   string
	Source string
}

// CountDocuments returns the number of stored documents.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// DeleteSource removes the document with the given source. Deleting an
// absent source is a no-op.
func (s *Store) DeleteSource(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, source)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
