/*
Package chat contains the real-time core: the connection hub, client
connections, and the wire protocol spoken over WebSocket.

This file defines the tagged event envelope. Every frame on the wire is an
Envelope carrying a type tag and a typed payload, so the wire contract is
enforced by the compiler rather than by convention.
*/
package chat

import (
	"encoding/json"
	"time"
)

// UnknownSender is the sentinel identity for connections whose handshake
// carried no resolvable session. Such connections may watch the room but
// their submissions are rejected.
const UnknownSender = "unknown"

// EventType tags the payload variant of an Envelope.
type EventType string

const (
	// TypeChatMessage carries a chat message. Server→client frames hold a
	// ChatPayload; client→server frames hold a SubmitPayload.
	TypeChatMessage EventType = "CHAT_MESSAGE"

	// TypeError carries an ErrorPayload back to one client.
	TypeError EventType = "ERROR"
)

// Envelope is the frame every WebSocket message is wrapped in.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope builds an Envelope around the marshaled payload.
func NewEnvelope(eventType EventType, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Type: eventType, Payload: raw}, nil
}

// ChatPayload is the server→client shape of a chat message, enriched with
// the sender's avatar as of delivery time.
type ChatPayload struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// SubmitPayload is the client→server shape of a chat message.
type SubmitPayload struct {
	Text string `json:"text"`
}

// ErrorPayload reports a rejected operation to the submitting client only.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// newChatEnvelope is the one place the ChatPayload wire shape is assembled.
func newChatEnvelope(sender, text, avatarURL string, sentAt time.Time) (Envelope, error) {
	return NewEnvelope(TypeChatMessage, ChatPayload{
		Sender:    sender,
		Text:      text,
		AvatarURL: avatarURL,
		Timestamp: sentAt.UnixMilli(),
	})
}
