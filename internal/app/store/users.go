package store

import (
	"context"
	"fmt"
	"strings"
)

// CreateUser inserts a new account and returns the stored record.
// A duplicate username or email surfaces as a unique violation; callers
// translate that with db.IsUniqueViolation.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (User, error) {
	const q = `
INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, username, email, password_hash, created_at`

	var u User
	err := s.pool.QueryRow(ctx, q, username, strings.ToLower(email), passwordHash).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// GetUserByEmail fetches an account by its login email.
// Returns pgx.ErrNoRows (wrapped) when no such account exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE email = $1`

	var u User
	err := s.pool.QueryRow(ctx, q, strings.ToLower(email)).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}

	return u, nil
}
