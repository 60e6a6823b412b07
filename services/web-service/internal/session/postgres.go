package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fabclean/fabclean-web/libs/db"
	"github.com/jackc/pgx/v5"
)

const createValuesTable = `
CREATE TABLE IF NOT EXISTS web_session_values (
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (session_id, key)
)`

const createExpiryIndex = `
CREATE INDEX IF NOT EXISTS web_session_values_expires_at_idx ON web_session_values (expires_at)`

// PostgresStore keeps one row per session key.
type PostgresStore struct {
	pool *db.Pool
	ttl  time.Duration
}

// NewPostgresStore creates the backing table when missing.
func NewPostgresStore(ctx context.Context, pool *db.Pool, ttl time.Duration) (*PostgresStore, error) {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if err := pool.Migrate(ctx, createValuesTable, createExpiryIndex); err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, ttl: ttl}, nil
}

func (s *PostgresStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `
		SELECT value
		FROM web_session_values
		WHERE session_id = $1 AND key = $2 AND expires_at > now()
	`, sid, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, sid, key, value string) error {
	expiresAt := time.Now().Add(s.ttl)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO web_session_values (session_id, key, value, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()
	`, sid, key, value, expiresAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE web_session_values SET expires_at = $2 WHERE session_id = $1
	`, sid, expiresAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		_, err := s.pool.Exec(ctx, `DELETE FROM web_session_values WHERE session_id = $1`, sid)
		return err
	}
	_, err := s.pool.Exec(ctx, `
		DELETE FROM web_session_values WHERE session_id = $1 AND key = ANY($2)
	`, sid, keys)
	return err
}

// RunJanitor deletes expired rows every interval until ctx is done.
func (s *PostgresStore) RunJanitor(ctx context.Context, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tag, err := s.pool.Exec(ctx, `DELETE FROM web_session_values WHERE expires_at <= now()`)
			if err != nil {
				logger.Error("session janitor failed", "err", err)
				continue
			}
			if n := tag.RowsAffected(); n > 0 {
				logger.Debug("expired session values removed", "rows", n)
			}
		}
	}
}
