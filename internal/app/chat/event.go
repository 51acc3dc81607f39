/*
Package chat contains the real-time core: the Hub (connection/room registry),
the Client (one WebSocket connection), and the event envelope exchanged with
clients.

This file defines the envelope and one payload struct per event kind. Every
frame on the wire is {"type": ..., "payload": ...}; payloads are validated at
the boundary and unknown types are dropped.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"regexp"

	"chatapp/internal/app/store"
)

// EventType tags a wire event.
type EventType string

// Client-to-server event types.
const (
	EventJoinRoom    EventType = "join-room"
	EventLeaveRoom   EventType = "leave-room"
	EventTyping      EventType = "typing"
	EventSendMessage EventType = "send-message"
)

// Server-to-client event types.
const (
	EventReceiveMessage EventType = "receive-message"
	EventUserTyping     EventType = "user-typing"
	EventError          EventType = "error"
)

// MaxContentBytes caps the byte length of a message body.
const MaxContentBytes = 5000

// roomNameRegex bounds room labels. Rooms are implicit: any label matching
// this pattern exists the moment someone joins it.
var roomNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Event is the envelope for every WebSocket frame in both directions.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRoomPayload asks to enter a room, leaving the current one if any.
type JoinRoomPayload struct {
	Room string `json:"room"`
}

// LeaveRoomPayload asks to leave a room.
type LeaveRoomPayload struct {
	Room string `json:"room"`
}

// TypingPayload reports the sender's typing state in its current room.
// The username is taken from the authenticated connection, never from the
// payload.
type TypingPayload struct {
	Room   string `json:"room"`
	Typing bool   `json:"typing"`
}

// SendMessagePayload submits a message to the sender's current room. TempID
// is a client-generated reconciliation tag echoed back on the broadcast copy.
type SendMessagePayload struct {
	Room   string `json:"room"`
	Text   string `json:"text"`
	TempID string `json:"tempId,omitempty"`
}

// MessagePayload is the broadcast form of a persisted message. TempID is
// only meaningful to the originating client.
type MessagePayload struct {
	store.Message
	TempID string `json:"tempId,omitempty"`
}

// TypingUsersPayload carries the full set of usernames currently typing in a
// room. Receivers filter out their own username before rendering.
type TypingUsersPayload struct {
	Room      string   `json:"room"`
	Usernames []string `json:"usernames"`
}

// ErrorPayload reports a business error over the socket.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// EncodeEvent marshals a typed payload into a wire-ready envelope.
func EncodeEvent(eventType EventType, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return json.Marshal(Event{
		Type:    eventType,
		Payload: payloadBytes,
	})
}

// ValidRoomName reports whether the label can name a room.
func ValidRoomName(room string) bool {
	return roomNameRegex.MatchString(room)
}
