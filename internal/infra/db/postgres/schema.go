package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
  id           BIGINT PRIMARY KEY,
  display_name TEXT NOT NULL DEFAULT '',
  handle       TEXT NOT NULL DEFAULT '',
  blocked      BOOLEAN NOT NULL DEFAULT FALSE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_users_blocked ON users (blocked);

CREATE TABLE IF NOT EXISTS correlation_log (
  id                   BIGSERIAL PRIMARY KEY,
  user_id              BIGINT NOT NULL REFERENCES users(id),
  forwarded_message_id INTEGER NOT NULL,
  original_message_id  INTEGER NOT NULL,
  category             TEXT NOT NULL CHECK (category IN ('panel','representative')),
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_correlation_forwarded_category ON correlation_log (forwarded_message_id, category);
`

// Migrate creates the tables when missing. It is safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
