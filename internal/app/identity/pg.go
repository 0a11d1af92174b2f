package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the PostgreSQL-backed identity store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns an identity store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Create(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (display_name, password_hash, avatar_url, profile_complete)
		 VALUES ($1, $2, $3, $4)`,
		u.DisplayName, u.PasswordHash, u.AvatarURL, u.ProfileComplete,
	)
	if err != nil {
		return fmt.Errorf("identity: create user: %w", err)
	}
	return nil
}

func (s *PGStore) GetByName(ctx context.Context, displayName string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT display_name, password_hash, avatar_url, profile_complete, created_at
		 FROM users WHERE display_name = $1`,
		displayName,
	).Scan(&u.DisplayName, &u.PasswordHash, &u.AvatarURL, &u.ProfileComplete, &u.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("identity: get user: %w", err)
	}

	return u, nil
}

func (s *PGStore) SetAvatar(ctx context.Context, displayName, avatarURL string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2, profile_complete = TRUE WHERE display_name = $1`,
		displayName, avatarURL,
	)
	if err != nil {
		return fmt.Errorf("identity: set avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) AvatarURL(ctx context.Context, displayName string) (string, error) {
	var url string
	err := s.pool.QueryRow(ctx,
		`SELECT avatar_url FROM users WHERE display_name = $1`,
		displayName,
	).Scan(&url)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("identity: avatar lookup: %w", err)
	}

	return url, nil
}
