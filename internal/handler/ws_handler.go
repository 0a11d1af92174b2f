/*
Package handler provides the HTTP handlers and routing for the chat server.

This file upgrades HTTP requests to WebSocket connections. The handshake
resolves the caller's identity from the same session cookie the HTTP layer
uses; an unresolvable session does not reject the connection but tags it
with the unknown sentinel (a read-only observer).
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"huddle/internal/app/chat"
	"huddle/internal/pkg/errs"
	"huddle/internal/pkg/limiter"
	"huddle/internal/pkg/logx"
	"huddle/internal/pkg/resp"
)

// HandleWebSocket rate-limits, identifies, and upgrades a connection, then
// runs the client's pumps. Registration with the hub performs the history
// replay before the connection can receive broadcasts.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		displayName, ok := currentIdentity(r, deps)
		if !ok {
			displayName = ""
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, displayName, deps.Messages)

		go client.WritePump()

		deps.Hub.Register(client)

		logx.Info("WebSocket connection established", "display_name", client.DisplayName())

		client.ReadPump()
	}
}
