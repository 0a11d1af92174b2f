/*
Package message owns the chat message log and the submit path.

Messages form a durable, time-ordered, append-only log. The Service here is
the only writer: it validates text, persists the record, enriches it with
the sender's current avatar, and hands it off for broadcast.
*/
package message

import (
	"context"
	"time"
)

// MaxTextBytes is the maximum allowed size of message text.
const MaxTextBytes = 5000

// ChatMessage is one immutable entry in the chat log. Avatar URLs are
// deliberately not stored on the record; they are resolved from the identity
// store at delivery time so display always reflects the current profile.
type ChatMessage struct {
	// ID is the message's unique identifier.
	ID string `json:"id"`

	// Sender is the display name of the author, or the unknown sentinel.
	Sender string `json:"sender"`

	// Text is the message body.
	Text string `json:"text"`

	// Timestamp is when the server accepted the message. Log order is
	// (timestamp, insertion order).
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence interface for the message log.
type Store interface {
	// Insert appends a message to the log.
	Insert(ctx context.Context, m ChatMessage) error

	// ListAscending returns the full log in chronological order, insertion
	// order breaking timestamp ties.
	ListAscending(ctx context.Context) ([]ChatMessage, error)
}
