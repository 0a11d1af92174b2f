/*
Package main is the entry point for the huddle chat server.

It loads configuration, initializes the global logger, connects the
database and blob storage, wires the session, message, and chat services,
starts the HTTP server, and handles OS interrupt signals for a graceful
shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"huddle/internal/app/chat"
	"huddle/internal/app/db"
	"huddle/internal/app/identity"
	"huddle/internal/app/message"
	"huddle/internal/app/session"
	"huddle/internal/app/storage"
	"huddle/internal/configs"
	"huddle/internal/handler"
	"huddle/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()

	storageService, err := storage.NewStorageService(storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize storage service")
	}

	identities := identity.NewPGStore(pool)
	sessionStore := session.NewPGStore(pool)
	messageStore := message.NewPGStore(pool)

	sessions := session.NewService(identities, sessionStore, cfg.SessionSecret, cfg.SessionTTL)

	if removed, err := sessions.SweepExpired(ctx); err != nil {
		logx.Warn("Startup session sweep failed", "error", err)
	} else if removed > 0 {
		logx.Info("Removed expired sessions on startup", "count", removed)
	}

	hub := chat.NewHub(messageStore, identities)
	messages := message.NewService(messageStore, identities, hub)

	deps := &handler.AppDeps{
		Hub:            hub,
		Config:         cfg,
		Sessions:       sessions,
		Identities:     identities,
		Messages:       messages,
		StorageService: storageService,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Huddle server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
