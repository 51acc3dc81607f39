/*
Package chat contains the real-time core: the Hub (connection/room registry),
the Client (one WebSocket connection), and the event envelope exchanged with
clients.

This file defines the Client. It runs the read/write pumps against the
WebSocket connection, dispatches inbound events to the Hub, and queues
outbound frames on a buffered channel so a slow reader never blocks the Hub.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatapp/internal/pkg/errs"
	"chatapp/internal/pkg/logx"
)

const (
	// writeWait is the timeout for writing a frame to the connection.
	writeWait = 10 * time.Second

	// pongWait is the maximum wait for a Pong before the read side gives up.
	pongWait = 60 * time.Second

	// pingPeriod is how often the server pings the client.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps the size of an inbound frame in bytes.
	maxMessageSize = 8192

	// sendQueueSize is the outbound frame buffer per connection.
	sendQueueSize = 256

	// eventTimeout bounds the handling of a single inbound event, persistence
	// included.
	eventTimeout = 5 * time.Second
)

// Identity is the authenticated user behind a connection.
type Identity struct {
	ID       uuid.UUID
	Username string
}

// Client represents one live WebSocket connection and its authenticated user.
type Client struct {
	// ID uniquely identifies this connection (not the user; one user may hold
	// several connections).
	ID string

	hub      *Hub
	conn     *websocket.Conn
	identity Identity

	// room is the current room label, "" when not in any. Guarded by hub.mu.
	room string

	// send queues outbound frames for the write pump. Closed by the Hub.
	send chan []byte

	// closed records that send has been closed. Guarded by hub.mu.
	closed bool

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(hub *Hub, wsConn *websocket.Conn, identity Identity) *Client {
	connID := uuid.NewString()

	clientLogger := logx.Logger().With().
		Str("client_id", connID).
		Str("username", identity.Username).
		Logger()

	return &Client{
		ID:       connID,
		hub:      hub,
		conn:     wsConn,
		identity: identity,
		send:     make(chan []byte, sendQueueSize),
		logger:   clientLogger,
	}
}

// ReadPump reads frames from the connection until it fails or closes,
// dispatching each inbound event. It owns connection cleanup.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect unwinds the connection when ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Disconnect(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent validates the envelope and routes the event to the Hub.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var event Event
	if err := json.Unmarshal(messageBytes, &event); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch event.Type {
	case EventJoinRoom:
		var payload JoinRoomPayload
		if !c.decodePayload(event, &payload) {
			return
		}
		c.hub.Join(ctx, c, payload.Room)

	case EventLeaveRoom:
		var payload LeaveRoomPayload
		if !c.decodePayload(event, &payload) {
			return
		}
		c.hub.Leave(ctx, c, payload.Room)

	case EventTyping:
		var payload TypingPayload
		if !c.decodePayload(event, &payload) {
			return
		}
		c.hub.Typing(ctx, c, payload.Typing)

	case EventSendMessage:
		var payload SendMessagePayload
		if !c.decodePayload(event, &payload) {
			return
		}
		c.handleSendMessage(ctx, payload)

	default:
		c.logger.Warn().Str("event_type", string(event.Type)).Msg("Client sent unsupported event type")
	}
}

// decodePayload unmarshals the event payload, logging and dropping the event
// on malformed input.
func (c *Client) decodePayload(event Event, dst any) bool {
	if err := json.Unmarshal(event.Payload, dst); err != nil {
		c.logger.Warn().Err(err).
			Str("event_type", string(event.Type)).
			Msg("Client sent invalid payload")
		return false
	}
	return true
}

// handleSendMessage validates the text bounds and hands the message to the
// Hub for persistence and broadcast.
func (c *Client) handleSendMessage(ctx context.Context, payload SendMessagePayload) {
	if payload.Text == "" {
		c.SendError(errs.NewError(errs.ErrMessageContentEmpty))
		return
	}

	if len(payload.Text) > MaxContentBytes {
		c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	c.hub.SendMessage(ctx, c, payload.Text, payload.TempID)
}

// WritePump moves frames from the send queue to the connection and keeps the
// heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued frame. Returns false when the pump
// should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a heartbeat Ping. Returns false on write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// queueEvent encodes and queues an outbound event without blocking. The hub
// mutex serializes the send against Disconnect/Shutdown closing the queue;
// sending on a closed channel would panic the process.
func (c *Client) queueEvent(eventType EventType, payload any) error {
	data, err := EncodeEvent(eventType, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Error encoding event for client")
		return err
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("client connection closed")
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping event")
		return fmt.Errorf("client send queue full")
	}
}

// SendError queues an error event for the client.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	if qErr := c.queueEvent(EventError, ErrorPayload{Code: code, Message: message}); qErr != nil {
		c.logger.Error().Err(qErr).Msg("Failed to queue error event")
	}
}
