package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatapp/internal/app/store"
	"chatapp/internal/pkg/auth/jwt"
	"chatapp/internal/pkg/errs"
)

// fakeMessageReader serves a canned history per room.
type fakeMessageReader struct {
	byRoom map[string][]store.Message
	err    error
}

func (f *fakeMessageReader) ListRecentMessages(_ context.Context, room string) ([]store.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byRoom[room], nil
}

// messagesRouter mounts the history route behind the identity middleware the
// way the real router does.
func messagesRouter(deps *AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))
	r.Get("/api/messages/{room}", HandleGetMessages(deps))
	return r
}

func authToken(t *testing.T) string {
	t.Helper()

	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:       uuid.NewString(),
		Username: "alice",
		Email:    "alice@example.com",
	}, testJWTSecret, jwt.UserIdentityExpiration)
	require.NoError(t, err)
	return token
}

func getMessages(t *testing.T, h http.Handler, room, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/api/messages/"+room, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHandleGetMessagesReturnsHistoryOldestFirst(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	history := []store.Message{
		{ID: uuid.New(), Room: "general", SenderID: uuid.New(), SenderName: "bob", Body: "first", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: uuid.New(), Room: "general", SenderID: uuid.New(), SenderName: "alice", Body: "second", CreatedAt: now.Add(-time.Minute)},
	}
	deps := testDeps(nil, &fakeMessageReader{byRoom: map[string][]store.Message{"general": history}})

	w, env := getMessages(t, messagesRouter(deps), "general", authToken(t))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, env.Code)

	var data struct {
		Messages []store.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	require.Len(t, data.Messages, 2)
	assert.Equal(t, "first", data.Messages[0].Body)
	assert.Equal(t, "second", data.Messages[1].Body)
	assert.Equal(t, "bob", data.Messages[0].SenderName)
}

func TestHandleGetMessagesEmptyRoomReturnsEmptyList(t *testing.T) {
	deps := testDeps(nil, &fakeMessageReader{byRoom: map[string][]store.Message{}})

	w, env := getMessages(t, messagesRouter(deps), "empty-room", authToken(t))

	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Messages []store.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotNil(t, data.Messages)
	assert.Empty(t, data.Messages)
}

func TestHandleGetMessagesRequiresAuth(t *testing.T) {
	deps := testDeps(nil, &fakeMessageReader{})

	w, env := getMessages(t, messagesRouter(deps), "general", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrUnauthorized, env.Code)
}

func TestHandleGetMessagesRejectsExpiredToken(t *testing.T) {
	deps := testDeps(nil, &fakeMessageReader{})

	expired, err := jwt.GenerateToken(&jwt.Payload{ID: uuid.NewString(), Username: "alice"}, testJWTSecret, -time.Minute)
	require.NoError(t, err)

	w, env := getMessages(t, messagesRouter(deps), "general", expired)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrUnauthorized, env.Code)
}

func TestHandleGetMessagesRejectsInvalidRoomName(t *testing.T) {
	deps := testDeps(nil, &fakeMessageReader{})

	w, env := getMessages(t, messagesRouter(deps), "bad%20room", authToken(t))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errs.ErrRoomNameInvalid, env.Code)
}

func TestHandleGetMessagesStoreFailure(t *testing.T) {
	deps := testDeps(nil, &fakeMessageReader{err: errors.New("connection refused")})

	w, env := getMessages(t, messagesRouter(deps), "general", authToken(t))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errs.ErrUnknown, env.Code)
}
