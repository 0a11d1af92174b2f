/*
Package handler provides the HTTP handlers and routing for the chat server.

This file defines the main router, wiring CORS, request logging, rate
limiting, the authentication and upload endpoints, the WebSocket endpoint,
and static file serving.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"huddle/internal/pkg/limiter"
	"huddle/internal/pkg/logx"
	"huddle/internal/pkg/resp"
)

const (
	// AuthRate limits credential endpoints per IP (requests per second).
	AuthRate  = 0.5
	AuthBurst = 5

	// ConnectRate limits WebSocket handshakes per IP.
	ConnectRate  = 0.2
	ConnectBurst = 5
)

// Router builds the HTTP routing table for the application.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: origin not allowed", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "huddle",
		})
	})

	r.Get("/", HandleIndex(deps))
	r.Get("/chat", HandleChatPage(deps))
	r.Get("/logout", HandleLogout(deps))

	r.Method(http.MethodPost, "/register", authLimiter.Middleware(HandleRegister(deps)))
	r.Method(http.MethodPost, "/login", authLimiter.Middleware(HandleLogin(deps)))

	r.Post("/upload-profile", HandleUploadProfile(deps))

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	r.Handle("/*", http.FileServer(http.Dir(deps.Config.StaticDir)))

	return r
}
