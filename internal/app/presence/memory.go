package presence

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the in-process Store backend, a mutex-guarded map of
// per-room username sets. It is the default when no Redis URL is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

// NewMemoryStore returns an empty in-process typing-state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]map[string]struct{}),
	}
}

// SetTyping adds or removes a username from the room's typing set.
func (m *MemoryStore) SetTyping(_ context.Context, room, username string, typing bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if typing {
		set, ok := m.rooms[room]
		if !ok {
			set = make(map[string]struct{})
			m.rooms[room] = set
		}
		set[username] = struct{}{}
		return nil
	}

	if set, ok := m.rooms[room]; ok {
		delete(set, username)
		if len(set) == 0 {
			delete(m.rooms, room)
		}
	}
	return nil
}

// TypingUsers returns the usernames currently typing in the room, sorted for
// stable rendering.
func (m *MemoryStore) TypingUsers(_ context.Context, room string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.rooms[room]
	users := make([]string, 0, len(set))
	for username := range set {
		users = append(users, username)
	}
	sort.Strings(users)
	return users, nil
}

// ClearUser removes the username from the room's typing set.
func (m *MemoryStore) ClearUser(ctx context.Context, room, username string) error {
	return m.SetTyping(ctx, room, username, false)
}
