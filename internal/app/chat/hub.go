/*
Package chat contains the real-time core: the connection hub, client
connections, and the wire protocol spoken over WebSocket.

This file defines the Hub, the single event loop that owns the set of live
connections. Registration replays the full message history to the new
connection before it joins the live set; because both steps happen inside
the same loop iteration, no broadcast can interleave with a replay and a
connection sees each message exactly once, via replay or via broadcast but
never both.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"huddle/internal/app/message"
	"huddle/internal/pkg/logx"
)

const (
	// broadcastChannelBuffer absorbs submit bursts while the loop is busy.
	broadcastChannelBuffer = 1024

	// replayTimeout bounds the history read plus avatar lookups for one
	// registering connection.
	replayTimeout = 10 * time.Second
)

// HistoryStore provides the ordered message log for replay.
type HistoryStore interface {
	ListAscending(ctx context.Context) ([]message.ChatMessage, error)
}

// ProfileResolver looks up a sender's current avatar URL.
type ProfileResolver interface {
	AvatarURL(ctx context.Context, displayName string) (string, error)
}

// Hub owns the live connection set and performs replay and broadcast fan-out.
type Hub struct {
	// clients is the live set, keyed by connection id. Only the Run loop
	// touches it, so no lock is needed.
	clients map[string]*Client

	// broadcast carries enriched events awaiting fan-out.
	broadcast chan Envelope

	// register carries connections that have finished their handshake.
	register chan *Client

	// unregister carries connections that have disconnected.
	unregister chan *Client

	// stopChan signals the Run loop to terminate.
	stopChan chan struct{}

	// wg tracks the Run loop for Shutdown.
	wg sync.WaitGroup

	history  HistoryStore
	profiles ProfileResolver

	logger zerolog.Logger
}

// NewHub constructs a Hub over the given history and profile sources and
// starts its event loop.
func NewHub(history HistoryStore, profiles ProfileResolver) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan Envelope, broadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
		history:    history,
		profiles:   profiles,
		logger:     logx.Logger().With().Str("component", "Hub").Logger(),
	}

	h.wg.Add(1)

	go h.run()

	return h
}

// run is the hub's event loop; exactly one instance runs per hub.
func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case env := <-h.broadcast:
			h.fanOut(env)

		case <-h.stopChan:
			for id, client := range h.clients {
				delete(h.clients, id)
				client.closeSend()
			}
			h.logger.Info().Msg("Hub loop stopped.")
			return
		}
	}
}

// Register hands a connection to the hub for replay and admission to the
// live set. It blocks until the loop accepts it or the hub stops.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopChan:
		client.closeSend()
	}
}

// Unregister removes a connection from the live set. Safe to call from any
// goroutine, including for clients that never reached the live set.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopChan:
	}
}

// BroadcastChat enqueues an enriched chat event for delivery to every live
// connection, in the order events are submitted here.
func (h *Hub) BroadcastChat(sender, text, avatarURL string, sentAt time.Time) {
	env, err := newChatEnvelope(sender, text, avatarURL, sentAt)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build chat envelope for broadcast.")
		return
	}

	select {
	case h.broadcast <- env:
	default:
		h.logger.Warn().Msg("Broadcast channel full, dropping event.")
	}
}

// Shutdown stops the loop and waits for it to finish. All client send
// channels are closed, which terminates their write pumps.
func (h *Hub) Shutdown() {
	select {
	case <-h.stopChan:
	default:
		close(h.stopChan)
	}

	h.wg.Wait()
}

// handleRegister replays history privately to the connection and then adds
// it to the live set. A failure mid-replay closes only this connection.
func (h *Hub) handleRegister(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), replayTimeout)
	defer cancel()

	history, err := h.history.ListAscending(ctx)
	if err != nil {
		h.logger.Error().Err(err).
			Str("connection_id", client.id).
			Msg("History read failed, closing connection before it goes live.")
		client.closeSend()
		return
	}

	// One avatar lookup per distinct sender for the whole replay, resolved
	// now rather than at original send time.
	avatars := make(map[string]string)

	for _, m := range history {
		avatarURL, ok := avatars[m.Sender]
		if !ok {
			avatarURL, err = h.profiles.AvatarURL(ctx, m.Sender)
			if err != nil {
				h.logger.Warn().Err(err).
					Str("sender", m.Sender).
					Msg("Avatar lookup failed during replay, continuing without it.")
				avatarURL = ""
			}
			avatars[m.Sender] = avatarURL
		}

		env, envErr := newChatEnvelope(m.Sender, m.Text, avatarURL, m.Timestamp)
		if envErr != nil {
			h.logger.Error().Err(envErr).Str("message_id", m.ID).Msg("Failed to build replay envelope.")
			continue
		}

		if !client.trySend(env) {
			h.logger.Warn().
				Str("connection_id", client.id).
				Msg("Replay aborted: connection cannot keep up.")
			client.closeSend()
			return
		}
	}

	h.clients[client.id] = client
	client.liveSince = time.Now()

	h.logger.Info().
		Str("connection_id", client.id).
		Str("display_name", client.displayName).
		Int("replayed", len(history)).
		Int("total_connections", len(h.clients)).
		Msg("Connection is live.")
}

// handleUnregister drops a connection from the live set.
func (h *Hub) handleUnregister(client *Client) {
	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		client.closeSend()

		h.logger.Info().
			Str("connection_id", client.id).
			Int("total_connections", len(h.clients)).
			Msg("Connection left.")
	}
}

// fanOut delivers one event to every live connection. A connection that
// cannot accept the event is dropped; the rest still receive it.
func (h *Hub) fanOut(env Envelope) {
	frame, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error marshaling envelope for broadcast.")
		return
	}

	for id, client := range h.clients {
		if !client.trySendBytes(frame) {
			h.logger.Warn().
				Str("connection_id", id).
				Msg("Send queue full or closed, dropping connection.")

			delete(h.clients, id)
			client.closeSend()
		}
	}
}
