package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEventEnvelope(t *testing.T) {
	data, err := EncodeEvent(EventJoinRoom, JoinRoomPayload{Room: "general"})
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventJoinRoom, event.Type)

	var payload JoinRoomPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "general", payload.Room)
}

func TestValidRoomName(t *testing.T) {
	valid := []string{"general", "room-1", "a", "Dev_Chat", "x_y-z"}
	for _, room := range valid {
		assert.True(t, ValidRoomName(room), "expected %q to be valid", room)
	}

	invalid := []string{
		"",
		"no spaces",
		"room/with/slashes",
		"ümlaut",
		"this-room-name-is-way-too-long-to-be-accepted-by-the-server-aaaaaaaaa",
	}
	for _, room := range invalid {
		assert.False(t, ValidRoomName(room), "expected %q to be invalid", room)
	}
}
