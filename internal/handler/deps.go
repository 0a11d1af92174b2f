package handler

import (
	"net/http"
	"time"

	"huddle/internal/app/chat"
	"huddle/internal/app/identity"
	"huddle/internal/app/message"
	"huddle/internal/app/session"
	"huddle/internal/app/storage"
	"huddle/internal/configs"
)

// SessionCookieName is the cookie carrying the session token. The WebSocket
// handshake reads the same cookie, so both protocol layers resolve identity
// from identical session state.
const SessionCookieName = "huddle_session"

// AppDeps bundles the services the handlers depend on.
type AppDeps struct {
	Hub            *chat.Hub
	Config         *configs.AppConfig
	Sessions       *session.Service
	Identities     identity.Store
	Messages       *message.Service
	StorageService storage.StorageService
}

// setSessionCookie attaches the session token to the response.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken extracts the raw session token from the request cookie.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// currentIdentity resolves the caller's display name from the session
// cookie. The second return is false for anonymous or expired callers.
func currentIdentity(r *http.Request, deps *AppDeps) (string, bool) {
	return deps.Sessions.Resolve(r.Context(), sessionToken(r))
}
