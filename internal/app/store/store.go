/*
Package store implements persistence for user accounts and chat messages on
top of a pgx connection pool.

Messages are immutable once written; their timestamps are assigned by the
database at insert time, so the stored order of a room is server-arrival
order.
*/
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is a persisted account record.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Message is a persisted chat message. SenderName is resolved from the users
// table and never stored on the messages row itself.
type Message struct {
	ID         uuid.UUID `json:"id"`
	Room       string    `json:"room"`
	SenderID   uuid.UUID `json:"senderId"`
	SenderName string    `json:"senderName"`
	Body       string    `json:"text"`
	CreatedAt  time.Time `json:"timestamp"`
}

// Store runs all database queries for the application.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
