/*
Package identity owns durable user identity records.

A User is keyed uniquely by display name and carries the credential hash and
optional profile metadata (avatar URL). Records are created at registration
and only mutated by the avatar upload path.
*/
package identity

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no user exists for the given display name.
var ErrNotFound = errors.New("identity: user not found")

// User is the durable identity record of a chat participant.
type User struct {
	// DisplayName is the unique identifier and public name of the user.
	DisplayName string `json:"displayName"`

	// PasswordHash is the bcrypt hash of the user's password. Never exposed
	// on any wire surface.
	PasswordHash string `json:"-"`

	// AvatarURL is the durable URL of the user's avatar image, empty until
	// one is uploaded.
	AvatarURL string `json:"avatarUrl,omitempty"`

	// ProfileComplete records whether the user has finished profile setup
	// by uploading an avatar.
	ProfileComplete bool `json:"profileComplete"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"-"`
}

// Store is the persistence interface for identity records.
type Store interface {
	// Create inserts a new user record. Duplicate display names surface the
	// store's unique-violation error.
	Create(ctx context.Context, u User) error

	// GetByName fetches the user for a display name, or ErrNotFound.
	GetByName(ctx context.Context, displayName string) (User, error)

	// SetAvatar records the user's avatar URL and marks the profile complete.
	SetAvatar(ctx context.Context, displayName, avatarURL string) error

	// AvatarURL returns the user's current avatar URL. Unknown users yield
	// an empty URL rather than an error, so enrichment never fails a replay.
	AvatarURL(ctx context.Context, displayName string) (string, error)
}
