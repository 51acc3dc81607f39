/*
Package presence tracks which usernames are currently typing in each room.

Typing state is transient best-effort data: it is never persisted with
messages and a lost update costs nothing, so both backends favor simplicity
over delivery guarantees.
*/
package presence

import "context"

// Store holds the per-room set of currently-typing usernames.
type Store interface {
	// SetTyping adds or removes a username from the room's typing set.
	SetTyping(ctx context.Context, room, username string, typing bool) error

	// TypingUsers returns the usernames currently typing in the room.
	TypingUsers(ctx context.Context, room string) ([]string, error)

	// ClearUser removes the username from the room's typing set, if present.
	// Equivalent to SetTyping(..., false); kept separate for leave/disconnect
	// call sites.
	ClearUser(ctx context.Context, room, username string) error
}
