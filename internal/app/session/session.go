/*
Package session implements the session authenticator.

It registers identities, verifies credentials, and issues session tokens.
Sessions are durable records, so a token remains valid identity proof across
process restarts until it expires or is terminated. The same Resolve path
answers "who is the caller" for both the HTTP layer and the WebSocket
handshake; there is no second trust boundary.
*/
package session

import (
	"context"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"huddle/internal/app/db"
	"huddle/internal/app/identity"
	"huddle/internal/pkg/auth/token"
	"huddle/internal/pkg/errs"
	"huddle/internal/pkg/logx"
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = time.Hour

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session: not found")

var displayNameRegex = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// dummyHash is a well-formed bcrypt hash compared against when the display
// name is unknown, so unknown-user and wrong-password failures cost the
// same work and cannot be told apart by timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Session is a durable record binding a token to one identity.
type Session struct {
	// ID is the session's unique identifier, carried as the token's jti claim.
	ID string

	// DisplayName is the identity this session proves.
	DisplayName string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is the persistence interface for session records.
type Store interface {
	Create(ctx context.Context, s Session) error

	// Get fetches a session by id, or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all sessions past their expiry and reports how
	// many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// Service validates credentials and manages session lifecycle.
type Service struct {
	identities identity.Store
	sessions   Store
	secret     string
	ttl        time.Duration
}

// NewService wires a session service over the given stores. A non-positive
// ttl falls back to DefaultTTL.
func NewService(identities identity.Store, sessions Store, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Service{
		identities: identities,
		sessions:   sessions,
		secret:     secret,
		ttl:        ttl,
	}
}

// TTL returns the configured session lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Register creates a new identity with a bcrypt-hashed password. The raw
// password is never stored or logged.
func (s *Service) Register(ctx context.Context, displayName, password string) (identity.User, *errs.CustomError) {
	if !displayNameRegex.MatchString(displayName) {
		return identity.User{}, errs.NewError(errs.ErrInvalidUsername)
	}

	passwordLen := utf8.RuneCountInString(password)
	if passwordLen < 6 || passwordLen > 50 {
		return identity.User{}, errs.NewError(errs.ErrInvalidPassword)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return identity.User{}, errs.NewError(errs.ErrUnknown)
	}

	u := identity.User{
		DisplayName:  displayName,
		PasswordHash: string(hashedPassword),
	}

	if err := s.identities.Create(ctx, u); err != nil {
		if db.IsUniqueViolation(err) {
			logx.Warn("registration conflict: display name already exists", "display_name", displayName)
			return identity.User{}, errs.NewError(errs.ErrUserAlreadyExists)
		}

		logx.Error(err, "failed to create user")
		return identity.User{}, errs.NewError(errs.ErrUnknown)
	}

	return u, nil
}

// Authenticate verifies credentials and issues a signed session token. The
// unknown-user and wrong-password paths return the identical error.
func (s *Service) Authenticate(ctx context.Context, displayName, password string) (string, identity.User, *errs.CustomError) {
	u, err := s.identities.GetByName(ctx, displayName)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// Burn a comparison so this path is not measurably faster.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return "", identity.User{}, errs.NewError(errs.ErrInvalidCredentials)
		}

		logx.Error(err, "login: identity fetch failed")
		return "", identity.User{}, errs.NewError(errs.ErrUnknown)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", identity.User{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	now := time.Now()
	sess := Session{
		ID:          uuid.New().String(),
		DisplayName: u.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		logx.Error(err, "login: session create failed")
		return "", identity.User{}, errs.NewError(errs.ErrUnknown)
	}

	tokenString, err := token.Generate(sess.ID, u.DisplayName, s.secret, s.ttl)
	if err != nil {
		logx.Error(err, "login: token generation failed")
		return "", identity.User{}, errs.NewError(errs.ErrUnknown)
	}

	return tokenString, u, nil
}

// Resolve maps a session token to the display name it proves. It returns
// false for malformed, expired, or terminated sessions. The durable record
// is authoritative: a validly signed token whose session row is gone no
// longer resolves.
func (s *Service) Resolve(ctx context.Context, tokenString string) (string, bool) {
	if tokenString == "" {
		return "", false
	}

	claims, err := token.Parse(tokenString, s.secret)
	if err != nil {
		return "", false
	}

	sess, err := s.sessions.Get(ctx, claims.Id)
	if err != nil {
		return "", false
	}

	if time.Now().After(sess.ExpiresAt) {
		// Lazy cleanup; the sweep catches anything this misses.
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			logx.Warn("resolve: failed to delete expired session", "session_id", sess.ID)
		}
		return "", false
	}

	return sess.DisplayName, true
}

// Terminate invalidates the session immediately. Later resolves of the same
// token fail even though its signature is still valid.
func (s *Service) Terminate(ctx context.Context, tokenString string) {
	claims, err := token.Parse(tokenString, s.secret)
	if err != nil {
		return
	}

	if err := s.sessions.Delete(ctx, claims.Id); err != nil && !errors.Is(err, ErrNotFound) {
		logx.Warn("logout: failed to delete session", "session_id", claims.Id)
	}
}

// SweepExpired removes all expired session rows.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}
