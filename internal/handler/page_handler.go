package handler

import (
	"net/http"
	"path/filepath"
)

// HandleIndex routes the root path by session presence: signed-in users go
// to the chat, everyone else to the login page.
func HandleIndex(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentIdentity(r, deps); ok {
			http.Redirect(w, r, "/chat", http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, "/login.html", http.StatusSeeOther)
	}
}

// HandleChatPage serves the chat UI to authenticated users and redirects
// everyone else to the login page.
func HandleChatPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentIdentity(r, deps); !ok {
			http.Redirect(w, r, "/login.html", http.StatusSeeOther)
			return
		}

		http.ServeFile(w, r, filepath.Join(deps.Config.StaticDir, "chat.html"))
	}
}
