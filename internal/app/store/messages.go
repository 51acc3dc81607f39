package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// HistoryLimit caps how many messages a history fetch returns per room.
const HistoryLimit = 50

// SaveMessage inserts a message and returns the stored record with its
// database-assigned id and timestamp. senderName fills the returned record
// so broadcast does not need a second round trip.
func (s *Store) SaveMessage(ctx context.Context, room string, senderID uuid.UUID, senderName, body string) (Message, error) {
	const q = `
INSERT INTO messages (room, sender_id, body)
VALUES ($1, $2, $3)
RETURNING id, room, sender_id, body, created_at`

	var m Message
	err := s.pool.QueryRow(ctx, q, room, senderID, body).
		Scan(&m.ID, &m.Room, &m.SenderID, &m.Body, &m.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("save message: %w", err)
	}

	m.SenderName = senderName
	return m, nil
}

// ListRecentMessages returns the most recent messages of a room, at most
// HistoryLimit entries, ordered oldest first, with sender usernames resolved.
func (s *Store) ListRecentMessages(ctx context.Context, room string) ([]Message, error) {
	const q = `
SELECT m.id, m.room, m.sender_id, u.username, m.body, m.created_at
FROM messages m
JOIN users u ON u.id = m.sender_id
WHERE m.room = $1
ORDER BY m.created_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, room, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Room, &m.SenderID, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	// The query walks the (room, created_at) index newest-first; clients want
	// oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
