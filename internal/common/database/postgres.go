// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-onboarding-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient holds the pool used by the verification audit and the
// onboarding session store.
type PostgresClient struct {
	DB *sql.DB
}

// Schema is applied at startup. Both statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS verification_records (
	id               UUID PRIMARY KEY,
	session_id       TEXT NOT NULL,
	business_name    TEXT NOT NULL,
	names_match      BOOLEAN NOT NULL,
	addresses_match  BOOLEAN NOT NULL,
	fraud_screened   BOOLEAN NOT NULL,
	fraudulent       BOOLEAN NOT NULL,
	buy_now_link     TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS onboarding_sessions (
	session_id     TEXT PRIMARY KEY,
	stage          TEXT NOT NULL,
	business_name  TEXT NOT NULL DEFAULT '',
	updated_at     TIMESTAMPTZ NOT NULL
);
`

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// EnsureSchema creates the audit and session tables if missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
