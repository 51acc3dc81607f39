/*
Package handler provides the HTTP handlers and routing for the chat server.

This file holds the message-history handler.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatapp/internal/app/chat"
	"chatapp/internal/app/store"
	"chatapp/internal/pkg/auth/jwt"
	"chatapp/internal/pkg/errs"
	"chatapp/internal/pkg/logx"
	"chatapp/internal/pkg/resp"
)

// HandleGetMessages returns the most recent messages of a room, at most
// store.HistoryLimit entries, oldest first, sender usernames resolved.
// Requires authentication.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		room := chi.URLParam(r, "room")
		if !chat.ValidRoomName(room) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNameInvalid))
			return
		}

		messages, err := deps.Messages.ListRecentMessages(r.Context(), room)
		if err != nil {
			logx.Error(err, "failed to list messages", "room", room)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if messages == nil {
			messages = []store.Message{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}
