package main

import (
	"fmt"
	"strings"

	"chatapp/internal/app/chat"
)

// displayMessage is one entry in the rendered message list. Pending entries
// are optimistic local copies awaiting their server echo.
type displayMessage struct {
	TempID     string
	SenderName string
	Text       string
	Timestamp  string
	Pending    bool
}

// chatState holds everything the terminal renders: the message list and the
// set of usernames currently typing. It reconciles optimistic local sends
// with their server echoes by tempId, so the sender never sees its own
// message twice.
type chatState struct {
	selfUsername string
	messages     []displayMessage
	typingUsers  []string
}

func newChatState(selfUsername string) *chatState {
	return &chatState{selfUsername: selfUsername}
}

// Reset drops all room-scoped state. Called on room switches before history
// is reloaded.
func (s *chatState) Reset() {
	s.messages = nil
	s.typingUsers = nil
}

// AppendHistory seeds the list from a history fetch.
func (s *chatState) AppendHistory(senderName, text, timestamp string) {
	s.messages = append(s.messages, displayMessage{
		SenderName: senderName,
		Text:       text,
		Timestamp:  timestamp,
	})
}

// ApplyLocalEcho records an optimistic copy of a just-sent message.
func (s *chatState) ApplyLocalEcho(tempID, text string) {
	s.messages = append(s.messages, displayMessage{
		TempID:     tempID,
		SenderName: s.selfUsername,
		Text:       text,
		Pending:    true,
	})
}

// ApplyServerMessage folds a broadcast message into the list. When the echo
// carries the tempId of a pending local entry, it replaces that entry
// instead of appending a duplicate.
func (s *chatState) ApplyServerMessage(msg chat.MessagePayload) {
	confirmed := displayMessage{
		SenderName: msg.SenderName,
		Text:       msg.Body,
		Timestamp:  msg.CreatedAt.Format("15:04"),
	}

	if msg.TempID != "" {
		for i := range s.messages {
			if s.messages[i].Pending && s.messages[i].TempID == msg.TempID {
				s.messages[i] = confirmed
				return
			}
		}
	}

	s.messages = append(s.messages, confirmed)
}

// SetTypingUsers replaces the typing set, filtering out the user's own
// username before it can be rendered.
func (s *chatState) SetTypingUsers(usernames []string) {
	filtered := usernames[:0:0]
	for _, u := range usernames {
		if u != s.selfUsername {
			filtered = append(filtered, u)
		}
	}
	s.typingUsers = filtered
}

// TypingLine renders the typing indicator, or "" when nobody is typing.
func (s *chatState) TypingLine() string {
	if len(s.typingUsers) == 0 {
		return ""
	}

	verb := "are"
	if len(s.typingUsers) == 1 {
		verb = "is"
	}

	return fmt.Sprintf("%s %s typing...", strings.Join(s.typingUsers, ", "), verb)
}
