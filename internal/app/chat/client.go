/*
Package chat contains the real-time core: the connection hub, client
connections, and the wire protocol spoken over WebSocket.

This file defines the Client struct, one live WebSocket connection bound to
a resolved identity (or the unknown sentinel). It owns the read and write
pumps and the buffered send queue the hub delivers into.
*/
package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"huddle/internal/app/message"
	"huddle/internal/pkg/errs"
	"huddle/internal/pkg/logx"
)

const (
	// writeWait is the timeout for writing a frame to the connection.
	writeWait = 10 * time.Second

	// pongWait is the maximum silence tolerated before the read side gives up.
	pongWait = 60 * time.Second

	// pingPeriod is how often the server pings; must be under pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound frames in bytes.
	maxMessageSize = 8192

	// sendQueueSize is the per-connection outbound buffer. Replay of a long
	// history and broadcast bursts both flow through it.
	sendQueueSize = 512

	// submitTimeout bounds the persist-and-enrich work for one inbound message.
	submitTimeout = 10 * time.Second
)

// MessageSubmitter is the hub-side view of the message service's write path.
type MessageSubmitter interface {
	Submit(ctx context.Context, sender, text string) (message.ChatMessage, *errs.CustomError)
}

// Client is one active WebSocket connection.
type Client struct {
	// id identifies this connection; a user with two tabs open holds two ids.
	id string

	hub *Hub

	conn *websocket.Conn

	// displayName is the identity resolved from the session at handshake
	// time, or UnknownSender.
	displayName string

	// liveSince is set by the hub when the connection enters the live set.
	liveSince time.Time

	// send queues outbound frames; closed exactly once via closeSend.
	send chan []byte

	submitter MessageSubmitter

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection. An empty
// displayName marks the connection as anonymous.
func NewClient(hub *Hub, conn *websocket.Conn, displayName string, submitter MessageSubmitter) *Client {
	if displayName == "" {
		displayName = UnknownSender
	}

	connectionID := uuid.New().String()

	clientLogger := logx.Logger().With().
		Str("connection_id", connectionID).
		Str("display_name", displayName).
		Logger()

	return &Client{
		id:          connectionID,
		hub:         hub,
		conn:        conn,
		displayName: displayName,
		send:        make(chan []byte, sendQueueSize),
		submitter:   submitter,
		logger:      clientLogger,
	}
}

// DisplayName returns the identity bound to this connection, or the
// unknown sentinel.
func (c *Client) DisplayName() string {
	return c.displayName
}

// authenticated reports whether the connection carries a resolved identity.
func (c *Client) authenticated() bool {
	return c.displayName != UnknownSender
}

// ReadPump reads frames from the connection until it closes, handling
// heartbeats and dispatching inbound events. It must run in its own
// goroutine and performs disconnect cleanup on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInbound(frameBytes)
	}
}

// cleanupOnDisconnect unregisters the connection and closes the socket.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Connection cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// processInbound decodes one inbound frame and dispatches on its type tag.
func (c *Client) processInbound(frameBytes []byte) {
	var env Envelope
	if err := json.Unmarshal(frameBytes, &env); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch env.Type {
	case TypeChatMessage:
		c.handleSubmit(env.Payload)

	default:
		c.logger.Warn().Str("event_type", string(env.Type)).Msg("Client sent unsupported event type")
	}
}

// handleSubmit routes a chat submission through the message service.
// Anonymous connections are observers; their submissions are rejected.
func (c *Client) handleSubmit(payloadBytes json.RawMessage) {
	var payload SubmitPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid CHAT_MESSAGE payload")
		return
	}

	if !c.authenticated() {
		c.SendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	if _, customErr := c.submitter.Submit(ctx, c.displayName, payload.Text); customErr != nil {
		c.SendError(customErr)
	}
}

// WritePump drains the send queue onto the connection and keeps the
// heartbeat alive. It must run in its own goroutine; it exits when the send
// queue closes or a write fails, closing the connection either way.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// trySend marshals the envelope onto the send queue without blocking.
// It reports false when the queue is full or already closed.
func (c *Client) trySend(env Envelope) bool {
	frame, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling envelope")
		return false
	}

	return c.trySendBytes(frame)
}

// trySendBytes enqueues a pre-marshaled frame without blocking.
func (c *Client) trySendBytes(frame []byte) bool {
	defer func() {
		// Enqueue after closeSend loses the race with disconnect; treat it
		// as a failed send rather than a crash.
		recover()
	}()

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue, terminating the write pump. Closing an
// already-closed queue is absorbed, since disconnect and hub shutdown can race.
func (c *Client) closeSend() {
	defer func() {
		recover()
	}()
	close(c.send)
}

// SendError queues a TypeError event describing the rejected operation.
func (c *Client) SendError(customErr *errs.CustomError) {
	env, err := NewEnvelope(TypeError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})

	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build ERROR envelope")
		return
	}

	if !c.trySend(env) {
		c.logger.Warn().Msg("Failed to queue ERROR event")
	}
}
