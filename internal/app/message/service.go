package message

import (
	"context"
	"strings"
	"time"

	"huddle/internal/pkg/errs"
	"huddle/internal/pkg/logx"
	"huddle/internal/pkg/randx"
)

// ProfileResolver looks up a sender's current avatar URL.
type ProfileResolver interface {
	AvatarURL(ctx context.Context, displayName string) (string, error)
}

// Broadcaster delivers an enriched chat event to every live connection.
type Broadcaster interface {
	BroadcastChat(sender, text, avatarURL string, sentAt time.Time)
}

// Service is the sole write path into the message log.
type Service struct {
	store       Store
	profiles    ProfileResolver
	broadcaster Broadcaster
}

// NewService wires the submit path over the given store and collaborators.
func NewService(store Store, profiles ProfileResolver, broadcaster Broadcaster) *Service {
	return &Service{
		store:       store,
		profiles:    profiles,
		broadcaster: broadcaster,
	}
}

// Submit validates and persists a new chat message, then hands the enriched
// event to the broadcaster. A rejected message leaves no record and triggers
// no broadcast.
func (s *Service) Submit(ctx context.Context, sender, text string) (ChatMessage, *errs.CustomError) {
	if strings.TrimSpace(text) == "" {
		return ChatMessage{}, errs.NewError(errs.ErrEmptyMessage)
	}

	if len(text) > MaxTextBytes {
		return ChatMessage{}, errs.NewError(errs.ErrMessageTooLong)
	}

	msg := ChatMessage{
		ID:        randx.MessageID(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}

	if err := s.store.Insert(ctx, msg); err != nil {
		logx.Error(err, "submit: failed to persist message", "sender", sender)
		return ChatMessage{}, errs.NewError(errs.ErrUnknown)
	}

	avatarURL, err := s.profiles.AvatarURL(ctx, sender)
	if err != nil {
		// Enrichment failure degrades to no avatar; the message still goes out.
		logx.Warn("submit: avatar lookup failed", "sender", sender)
		avatarURL = ""
	}

	s.broadcaster.BroadcastChat(msg.Sender, msg.Text, avatarURL, msg.Timestamp)

	return msg, nil
}
