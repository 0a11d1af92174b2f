package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the PostgreSQL-backed message log.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a message store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Insert(ctx context.Context, m ChatMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, sender, text, sent_at) VALUES ($1, $2, $3, $4)`,
		m.ID, m.Sender, m.Text, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("message: insert: %w", err)
	}
	return nil
}

func (s *PGStore) ListAscending(ctx context.Context) ([]ChatMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, sender, text, sent_at FROM messages ORDER BY sent_at, seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("message: list: %w", err)
	}
	defer rows.Close()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("message: scan: %w", err)
		}
		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message: list: %w", err)
	}

	return msgs, nil
}
