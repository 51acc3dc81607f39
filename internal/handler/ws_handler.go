/*
Package handler provides the HTTP handlers and routing for the chat server.

This file upgrades HTTP requests to WebSocket connections. Browsers cannot
attach headers to a WebSocket dial, so the identity token rides in the
"token" query parameter and is verified before the upgrade.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatapp/internal/app/chat"
	"chatapp/internal/pkg/auth/jwt"
	"chatapp/internal/pkg/errs"
	"chatapp/internal/pkg/limiter"
	"chatapp/internal/pkg/logx"
	"chatapp/internal/pkg/resp"
)

// HandleWebSocket authenticates and upgrades a WebSocket request, then runs
// the client's pumps. The connection starts in no room; the client joins one
// with a join-room event.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			logx.Warn("WebSocket request rejected: Missing token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: Invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		userID, err := uuid.Parse(payload.ID)
		if err != nil {
			logx.Warn("WebSocket request rejected: Malformed user id in token", "id", payload.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, chat.Identity{
			ID:       userID,
			Username: payload.Username,
		})

		deps.Hub.Register(client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "client_id", client.ID, "username", payload.Username)

		client.ReadPump()
	}
}
