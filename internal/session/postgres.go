package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"calmate-web/internal/model"
)

// PostgresStore persists session records so logins survive restarts.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, `
		SELECT id, token, expires_at
		FROM sessions
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Token, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, model.ErrSessionNotFound
	}
	if err != nil {
		return Record{}, err
	}

	if rec.Expired(time.Now()) {
		_ = s.Delete(ctx, id)
		return Record{}, model.ErrSessionNotFound
	}

	return rec, nil
}

func (s *PostgresStore) Put(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
	`, rec.ID, rec.Token, rec.ExpiresAt)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}
