package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ChatRecord is one persisted question/answer exchange.
type ChatRecord struct {
	ID            int64
	SessionID     string
	UserMessage   string
	BotAnswer     string
	UserEmbedding []float32
	BotEmbedding  []float32
	Timestamp     time.Time
}

func encodeVector(vec []float32) (string, error) {
	data, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("failed to encode vector: %w", err)
	}
	return string(data), nil
}

func decodeVector(data string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(data), &vec); err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}
	return vec, nil
}

// AppendChat persists a completed exchange for a session.
func (s *Store) AppendChat(ctx context.Context, rec ChatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	userVec, err := encodeVector(rec.UserEmbedding)
	if err != nil {
		return err
	}
	botVec, err := encodeVector(rec.BotEmbedding)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chat_history (session_id, user_message, bot_answer, user_embedding, bot_embedding)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.UserMessage, rec.BotAnswer, userVec, botVec)
	if err != nil {
		return fmt.Errorf("failed to insert chat record: %w", err)
	}
	return nil
}

// HistoryBySession returns every exchange for a session in chronological
// order. An unknown session yields an empty history.
func (s *Store) HistoryBySession(ctx context.Context, sessionID string) ([]ChatRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_message, bot_answer, user_embedding, bot_embedding, timestamp
		 FROM chat_history WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ChatRecord
	for rows.Next() {
		var rec ChatRecord
		var userVec, botVec string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.UserMessage, &rec.BotAnswer,
			&userVec, &botVec, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat record: %w", err)
		}
		if rec.UserEmbedding, err = decodeVector(userVec); err != nil {
			return nil, err
		}
		if rec.BotEmbedding, err = decodeVector(botVec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListSessions returns the distinct session IDs with recorded history,
// most recently active first.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM chat_history GROUP BY session_id ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// DeleteHistory removes all history for a session. Deleting an unknown
// session is a no-op.
func (s *Store) DeleteHistory(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_history WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete chat history: %w", err)
	}
	return nil
}
