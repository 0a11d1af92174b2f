/*
Package handler provides the HTTP handlers and routing for the chat server.

This file holds the authentication surface: registration, login, and logout.
Login failures are deliberately uniform; the response never distinguishes an
unknown user from a wrong password.
*/
package handler

import (
	"net/http"

	"huddle/internal/pkg/errs"
	"huddle/internal/pkg/req"
	"huddle/internal/pkg/resp"
)

// HandleRegister processes a registration form post and redirects to the
// login page on success.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if customErr := req.ParseForm(r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		displayName := r.PostFormValue("username")
		password := r.PostFormValue("password")

		if _, customErr := deps.Sessions.Register(r.Context(), displayName, password); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		http.Redirect(w, r, "/login.html", http.StatusSeeOther)
	}
}

// HandleLogin verifies credentials, sets the session cookie, and redirects
// to profile setup or the chat depending on profile completeness.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if customErr := req.ParseForm(r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		displayName := r.PostFormValue("username")
		password := r.PostFormValue("password")

		token, user, customErr := deps.Sessions.Authenticate(r.Context(), displayName, password)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		setSessionCookie(w, token, deps.Sessions.TTL())

		target := "/chat"
		if !user.ProfileComplete {
			target = "/profile.html"
		}

		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// HandleLogout terminates the session and clears the cookie.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := sessionToken(r); token != "" {
			deps.Sessions.Terminate(r.Context(), token)
		}

		clearSessionCookie(w)

		http.Redirect(w, r, "/login.html", http.StatusSeeOther)
	}
}

// requireIdentity resolves the caller or writes the unauthorized envelope.
func requireIdentity(w http.ResponseWriter, r *http.Request, deps *AppDeps) (string, bool) {
	displayName, ok := currentIdentity(r, deps)
	if !ok {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return "", false
	}
	return displayName, true
}
