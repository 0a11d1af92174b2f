package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"huddle/internal/app/identity"
	"huddle/internal/pkg/errs"
)

type memIdentityStore struct {
	mu    sync.Mutex
	users map[string]identity.User
}

func newMemIdentityStore() *memIdentityStore {
	return &memIdentityStore{users: map[string]identity.User{}}
}

func (s *memIdentityStore) Create(ctx context.Context, u identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.DisplayName]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}
	}
	s.users[u.DisplayName] = u
	return nil
}

func (s *memIdentityStore) GetByName(ctx context.Context, displayName string) (identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[displayName]
	if !ok {
		return identity.User{}, identity.ErrNotFound
	}
	return u, nil
}

func (s *memIdentityStore) SetAvatar(ctx context.Context, displayName, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[displayName]
	if !ok {
		return identity.ErrNotFound
	}
	u.AvatarURL = avatarURL
	u.ProfileComplete = true
	s.users[displayName] = u
	return nil
}

func (s *memIdentityStore) AvatarURL(ctx context.Context, displayName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[displayName].AvatarURL, nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]Session{}}
}

func (s *memSessionStore) Create(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *memSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *memSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := time.Now()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *memSessionStore) expireAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.ExpiresAt = time.Now().Add(-time.Minute)
		s.sessions[id] = sess
	}
}

func (s *memSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

const testSecret = "test-secret"

func newTestService(ttl time.Duration) (*Service, *memIdentityStore, *memSessionStore) {
	identities := newMemIdentityStore()
	sessions := newMemSessionStore()
	return NewService(identities, sessions, testSecret, ttl), identities, sessions
}

func mustRegister(t *testing.T, svc *Service, name, password string) {
	t.Helper()

	if _, customErr := svc.Register(context.Background(), name, password); customErr != nil {
		t.Fatalf("Register(%q) failed: %v", name, customErr)
	}
}

func TestRegisterAndAuthenticateRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(0)
	ctx := context.Background()

	mustRegister(t, svc, "alice", "hunter22")

	tokenString, u, customErr := svc.Authenticate(ctx, "alice", "hunter22")
	if customErr != nil {
		t.Fatalf("Authenticate failed: %v", customErr)
	}
	if u.DisplayName != "alice" {
		t.Fatalf("displayName = %q, want alice", u.DisplayName)
	}

	name, ok := svc.Resolve(ctx, tokenString)
	if !ok || name != "alice" {
		t.Fatalf("Resolve = (%q, %v), want (alice, true)", name, ok)
	}
}

func TestRegisterNeverStoresRawPassword(t *testing.T) {
	svc, identities, _ := newTestService(0)

	mustRegister(t, svc, "alice", "hunter22")

	u, err := identities.GetByName(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}

	if u.PasswordHash == "hunter22" || strings.Contains(u.PasswordHash, "hunter22") {
		t.Fatal("raw password leaked into the stored credential")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not verify the password: %v", err)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(0)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		wantCode int
	}{
		{"short username", "ab", "hunter22", errs.ErrInvalidUsername},
		{"uppercase username", "Alice", "hunter22", errs.ErrInvalidUsername},
		{"username with space", "al ice", "hunter22", errs.ErrInvalidUsername},
		{"short password", "alice", "12345", errs.ErrInvalidPassword},
		{"long password", "alice", strings.Repeat("x", 51), errs.ErrInvalidPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, customErr := svc.Register(ctx, tc.username, tc.password)
			if customErr == nil {
				t.Fatal("expected an error")
			}
			if customErr.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d", customErr.Code, tc.wantCode)
			}
		})
	}
}

func TestRegisterDuplicateDisplayName(t *testing.T) {
	svc, _, _ := newTestService(0)

	mustRegister(t, svc, "alice", "hunter22")

	_, customErr := svc.Register(context.Background(), "alice", "different1")
	if customErr == nil || customErr.Code != errs.ErrUserAlreadyExists {
		t.Fatalf("got %v, want code %d", customErr, errs.ErrUserAlreadyExists)
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(0)
	ctx := context.Background()

	mustRegister(t, svc, "alice", "hunter22")

	_, _, wrongPassword := svc.Authenticate(ctx, "alice", "not-it")
	_, _, unknownUser := svc.Authenticate(ctx, "mallory", "not-it")

	if wrongPassword == nil || unknownUser == nil {
		t.Fatal("expected both logins to fail")
	}
	if wrongPassword.Code != errs.ErrInvalidCredentials || unknownUser.Code != errs.ErrInvalidCredentials {
		t.Fatalf("codes = (%d, %d), want both %d",
			wrongPassword.Code, unknownUser.Code, errs.ErrInvalidCredentials)
	}
	if wrongPassword.Message != unknownUser.Message {
		t.Fatal("failure messages differ between unknown user and wrong password")
	}
}

func TestResolveRejectsTamperedToken(t *testing.T) {
	svc, _, _ := newTestService(0)
	ctx := context.Background()

	mustRegister(t, svc, "alice", "hunter22")
	tokenString, _, customErr := svc.Authenticate(ctx, "alice", "hunter22")
	if customErr != nil {
		t.Fatalf("Authenticate failed: %v", customErr)
	}

	if _, ok := svc.Resolve(ctx, "not-a-token"); ok {
		t.Fatal("garbage token resolved")
	}

	// Same token verified against a different secret must not resolve.
	other := NewService(newMemIdentityStore(), newMemSessionStore(), "other-secret", 0)
	if _, ok := other.Resolve(ctx, tokenString); ok {
		t.Fatal("token resolved under a different signing secret")
	}
}

func TestResolveExpiredSessionDeletesRow(t *testing.T) {
	svc, _, sessions := newTestService(time.Hour)
	ctx := context.Background()

	mustRegister(t, svc, "alice", "hunter22")
	tokenString, _, customErr := svc.Authenticate(ctx, "alice", "hunter22")
	if customErr != nil {
		t.Fatalf("Authenticate failed: %v", customErr)
	}

	// The token signature is still valid; only the durable record has expired.
	sessions.expireAll()

	if _, ok := svc.Resolve(ctx, tokenString); ok {
		t.Fatal("expired session resolved")
	}
	if got := sessions.count(); got != 0 {
		t.Fatalf("session rows = %d, want 0 after lazy expiry cleanup", got)
	}
}

func TestTerminateInvalidatesToken(t *testing.T) {
	svc, _, sessions := newTestService(0)
	ctx := context.Background()

	mustRegister(t, svc, "alice", "hunter22")
	tokenString, _, customErr := svc.Authenticate(ctx, "alice", "hunter22")
	if customErr != nil {
		t.Fatalf("Authenticate failed: %v", customErr)
	}

	svc.Terminate(ctx, tokenString)

	if _, ok := svc.Resolve(ctx, tokenString); ok {
		t.Fatal("terminated session still resolves")
	}
	if got := sessions.count(); got != 0 {
		t.Fatalf("session rows = %d, want 0 after terminate", got)
	}
}

func TestSweepExpiredRemovesOnlyExpiredRows(t *testing.T) {
	svc, _, sessions := newTestService(time.Hour)
	ctx := context.Background()

	mustRegister(t, svc, "alice", "hunter22")
	if _, _, customErr := svc.Authenticate(ctx, "alice", "hunter22"); customErr != nil {
		t.Fatalf("Authenticate failed: %v", customErr)
	}

	stale := Session{
		ID:          "stale",
		DisplayName: "alice",
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	if err := sessions.Create(ctx, stale); err != nil {
		t.Fatalf("seeding stale session failed: %v", err)
	}

	removed, err := svc.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if got := sessions.count(); got != 1 {
		t.Fatalf("session rows = %d, want the live one to survive", got)
	}
}
