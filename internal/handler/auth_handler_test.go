package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chatapp/internal/app/store"
	"chatapp/internal/configs"
	"chatapp/internal/pkg/auth/jwt"
	"chatapp/internal/pkg/errs"
)

const testJWTSecret = "handler-test-secret"

// fakeUserStore is an in-memory UserStore keyed by email.
type fakeUserStore struct {
	users     map[string]store.User
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]store.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, email, passwordHash string) (store.User, error) {
	if f.createErr != nil {
		return store.User{}, f.createErr
	}

	user := store.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	user, ok := f.users[email]
	if !ok {
		return store.User{}, pgxNoRows
	}
	return user, nil
}

var pgxNoRows = &pgconn.PgError{Code: "02000", Message: "no rows"}

func testDeps(users UserStore, messages MessageReader) *AppDeps {
	return &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			JWTSecret:   testJWTSecret,
		},
		Users:    users,
		Messages: messages,
	}
}

// envelope mirrors the REST response shape for assertions.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest(method, target, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHandleRegisterSuccess(t *testing.T) {
	users := newFakeUserStore()
	deps := testDeps(users, nil)

	w, env := doJSON(t, HandleRegister(deps), http.MethodPost, "/api/auth/register", RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, env.Code)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.Equal(t, "alice", data.User.Username)
	assert.Equal(t, "alice@example.com", data.User.Email)
	assert.NotEmpty(t, data.User.ID)

	payload, err := jwt.ParseToken(data.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload.Username)
	assert.Equal(t, data.User.ID, payload.ID)

	// The stored credential must be a hash, never the password itself.
	stored := users.users["alice@example.com"]
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
}

func TestHandleRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		input    RegisterInput
		wantCode int
	}{
		{
			name:     "username too short",
			input:    RegisterInput{Username: "ab", Email: "a@b.com", Password: "hunter22"},
			wantCode: errs.ErrInvalidUsername,
		},
		{
			name:     "username has uppercase",
			input:    RegisterInput{Username: "Alice", Email: "a@b.com", Password: "hunter22"},
			wantCode: errs.ErrInvalidUsername,
		},
		{
			name:     "malformed email",
			input:    RegisterInput{Username: "alice", Email: "not-an-email", Password: "hunter22"},
			wantCode: errs.ErrInvalidEmail,
		},
		{
			name:     "password too short",
			input:    RegisterInput{Username: "alice", Email: "a@b.com", Password: "abc"},
			wantCode: errs.ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := testDeps(newFakeUserStore(), nil)

			w, env := doJSON(t, HandleRegister(deps), http.MethodPost, "/api/auth/register", tt.input)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestHandleRegisterDuplicate(t *testing.T) {
	users := newFakeUserStore()
	users.createErr = &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	deps := testDeps(users, nil)

	w, env := doJSON(t, HandleRegister(deps), http.MethodPost, "/api/auth/register", RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errs.ErrUserAlreadyExists, env.Code)
}

func TestHandleLoginSuccess(t *testing.T) {
	users := newFakeUserStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	users.users["alice@example.com"] = store.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}
	deps := testDeps(users, nil)

	w, env := doJSON(t, HandleLogin(deps), http.MethodPost, "/api/auth/login", LoginInput{
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, env.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	payload, err := jwt.ParseToken(data.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload.Username)
}

func TestHandleLoginRejectsBadCredentials(t *testing.T) {
	users := newFakeUserStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	users.users["alice@example.com"] = store.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}
	deps := testDeps(users, nil)

	tests := []struct {
		name  string
		input LoginInput
	}{
		{name: "wrong password", input: LoginInput{Email: "alice@example.com", Password: "wrong"}},
		{name: "unknown email", input: LoginInput{Email: "nobody@example.com", Password: "hunter22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, HandleLogin(deps), http.MethodPost, "/api/auth/login", tt.input)

			// Same response either way, so callers cannot probe for accounts.
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, errs.ErrInvalidCredentials, env.Code)
		})
	}
}

func TestHandleRegisterRejectsWrongContentType(t *testing.T) {
	deps := testDeps(newFakeUserStore(), nil)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte(`{}`)))
	r.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()

	HandleRegister(deps).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, errs.ErrUnsupportedMediaType, env.Code)
}
