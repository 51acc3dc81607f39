package handler

import (
	"context"

	"chatapp/internal/app/chat"
	"chatapp/internal/app/store"
	"chatapp/internal/configs"
)

// UserStore is the account persistence surface the handlers need.
// Satisfied by *store.Store.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
}

// MessageReader is the history-fetch surface. Satisfied by *store.Store.
type MessageReader interface {
	ListRecentMessages(ctx context.Context, room string) ([]store.Message, error)
}

// AppDeps bundles the collaborators handlers are constructed with.
type AppDeps struct {
	Hub      *chat.Hub
	Config   *configs.AppConfig
	Users    UserStore
	Messages MessageReader
}
