/*
Package chat contains the real-time core: the Hub (connection/room registry),
the Client (one WebSocket connection), and the event envelope exchanged with
clients.

This file defines the Hub. It owns all room membership state behind a mutex:
which clients are connected, which room each one is in, and the fan-out of
message and typing events to the right subset of connections. A connection is
in at most one room at a time; joining a new room evicts the previous
membership.
*/
package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chatapp/internal/app/presence"
	"chatapp/internal/app/store"
	"chatapp/internal/pkg/errs"
	"chatapp/internal/pkg/logx"
)

// ErrNotInRoom is returned when an operation requires a current room and the
// connection has none.
var ErrNotInRoom = errors.New("connection is not in a room")

// MessageSaver persists chat messages. Satisfied by *store.Store.
type MessageSaver interface {
	SaveMessage(ctx context.Context, room string, senderID uuid.UUID, senderName, body string) (store.Message, error)
}

// Hub is the connection/room registry. All mutation of membership state goes
// through its mutex; the WebSocket transport never owns lifecycle decisions.
type Hub struct {
	// mu protects clients, rooms, and every client's room and closed fields.
	mu sync.RWMutex

	// clients holds every live connection, in a room or not.
	clients map[*Client]struct{}

	// rooms maps a room label to its member set.
	rooms map[string]map[*Client]struct{}

	// messages persists messages before they are broadcast.
	messages MessageSaver

	// typing tracks the per-room typing sets.
	typing presence.Store

	logger zerolog.Logger
}

// NewHub constructs a Hub with the given persistence and presence backends.
func NewHub(messages MessageSaver, typing presence.Store) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
		messages: messages,
		typing:   typing,
		logger:   hubLogger,
	}
}

// Register adds a freshly-upgraded connection to the registry. The client is
// in no room until it joins one.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info().Str("client_id", c.ID).Str("username", c.identity.Username).Msg("Client registered.")
}

// Join moves the client into the given room. Any previous membership is
// evicted first, including the client's typing state there.
func (h *Hub) Join(ctx context.Context, c *Client, room string) error {
	if !ValidRoomName(room) {
		c.SendError(errs.NewError(errs.ErrRoomNameInvalid))
		return errs.NewError(errs.ErrRoomNameInvalid)
	}

	h.mu.Lock()
	oldRoom := c.room
	if oldRoom == room {
		h.mu.Unlock()
		return nil
	}

	if oldRoom != "" {
		h.removeFromRoomLocked(c, oldRoom)
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.room = room
	h.mu.Unlock()

	if oldRoom != "" {
		h.clearTyping(ctx, c, oldRoom)
	}

	h.logger.Info().
		Str("client_id", c.ID).
		Str("room", room).
		Str("previous_room", oldRoom).
		Msg("Client joined room.")
	return nil
}

// Leave removes the client from the given room. Leaving a room the client is
// not in is a no-op.
func (h *Hub) Leave(ctx context.Context, c *Client, room string) error {
	h.mu.Lock()
	if c.room != room {
		h.mu.Unlock()
		return nil
	}

	h.removeFromRoomLocked(c, room)
	c.room = ""
	h.mu.Unlock()

	h.clearTyping(ctx, c, room)

	h.logger.Info().Str("client_id", c.ID).Str("room", room).Msg("Client left room.")
	return nil
}

// Typing updates the client's typing state in its current room and notifies
// the other members with the room's full typing set. Typing events from a
// client outside any room are dropped.
func (h *Hub) Typing(ctx context.Context, c *Client, typing bool) error {
	room := h.RoomOf(c)
	if room == "" {
		return ErrNotInRoom
	}

	if err := h.typing.SetTyping(ctx, room, c.identity.Username, typing); err != nil {
		h.logger.Error().Err(err).Str("room", room).Msg("Failed to update typing state.")
		return err
	}

	h.notifyTyping(ctx, room, c)
	return nil
}

// SendMessage persists the message, then broadcasts it to every member of
// the client's current room, the sender included. The broadcast copy echoes
// the client's tempID so the sender can reconcile its optimistic entry.
// If persistence fails the message is NOT broadcast: the failure is logged
// and only the sender is told.
func (h *Hub) SendMessage(ctx context.Context, c *Client, text, tempID string) error {
	room := h.RoomOf(c)
	if room == "" {
		c.SendError(errs.NewError(errs.ErrNotInRoom))
		return ErrNotInRoom
	}

	msg, err := h.messages.SaveMessage(ctx, room, c.identity.ID, c.identity.Username, text)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("client_id", c.ID).
			Str("room", room).
			Msg("Failed to persist message. Broadcast suppressed.")
		c.SendError(errs.NewError(errs.ErrMessageNotDelivered))
		return err
	}

	// The sender is done composing; drop it from the typing set before the
	// message lands.
	h.clearTyping(ctx, c, room)

	data, err := EncodeEvent(EventReceiveMessage, MessagePayload{Message: msg, TempID: tempID})
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", msg.ID.String()).Msg("Failed to encode message for broadcast.")
		return err
	}

	h.deliver(room, data, nil)
	return nil
}

// Disconnect removes the client from its room and from the registry, and
// closes its send queue. Safe to call more than once.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	room := c.room
	if room != "" {
		h.removeFromRoomLocked(c, room)
		c.room = ""
	}
	delete(h.clients, c)
	h.closeClientLocked(c)
	h.mu.Unlock()

	if room != "" {
		h.clearTyping(context.Background(), c, room)
	}

	h.logger.Info().Str("client_id", c.ID).Str("room", room).Msg("Client disconnected.")
}

// RoomOf returns the client's current room, or "" when it has none.
func (h *Hub) RoomOf(c *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.room
}

// RoomSize returns the number of connections currently joined to the room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Shutdown closes every client's send queue and empties the registry.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	for c := range h.clients {
		h.closeClientLocked(c)
	}
	h.clients = make(map[*Client]struct{})
	h.rooms = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	h.logger.Info().Msg("Hub shutdown complete.")
}

// removeFromRoomLocked deletes the client from a room's member set. Callers
// hold h.mu.
func (h *Hub) removeFromRoomLocked(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// closeClientLocked closes the client's send queue exactly once. Callers
// hold h.mu.
func (h *Hub) closeClientLocked(c *Client) {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// clearTyping drops the client from a room's typing set and tells the
// remaining members.
func (h *Hub) clearTyping(ctx context.Context, c *Client, room string) {
	if err := h.typing.ClearUser(ctx, room, c.identity.Username); err != nil {
		h.logger.Error().Err(err).Str("room", room).Msg("Failed to clear typing state.")
		return
	}
	h.notifyTyping(ctx, room, c)
}

// notifyTyping sends the room's current typing set to every member except
// the client whose state changed.
func (h *Hub) notifyTyping(ctx context.Context, room string, exclude *Client) {
	users, err := h.typing.TypingUsers(ctx, room)
	if err != nil {
		h.logger.Error().Err(err).Str("room", room).Msg("Failed to read typing state.")
		return
	}

	data, err := EncodeEvent(EventUserTyping, TypingUsersPayload{Room: room, Usernames: users})
	if err != nil {
		h.logger.Error().Err(err).Str("room", room).Msg("Failed to encode typing notification.")
		return
	}

	h.deliver(room, data, exclude)
}

// deliver fans data out to the room's members, skipping exclude. Clients
// whose send queue is full are evicted instead of blocking the fan-out.
func (h *Hub) deliver(room string, data []byte, exclude *Client) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.rooms[room] {
		if c == exclude {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn().
			Str("client_id", c.ID).
			Str("room", room).
			Msg("Client send queue full, disconnecting.")
		h.Disconnect(c)
	}
}
