// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fragrance-finder/internal/common/config"

	_ "github.com/lib/pq"
)

// schemaStatements create the quiz tables when they are missing.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS quiz_responses (
		id                   UUID PRIMARY KEY,
		gender               TEXT,
		age_group            TEXT,
		usage                TEXT[],
		scent_profile        TEXT[],
		intensity            TEXT,
		seasonality          TEXT[],
		avoidance            TEXT[],
		longevity            TEXT,
		budget               TEXT,
		brand_type           TEXT,
		top_fragrance_ids    INTEGER[],
		tags                 TEXT[],
		user_country         TEXT NOT NULL DEFAULT 'unknown',
		user_city            TEXT,
		user_region          TEXT,
		email                TEXT,
		agreed_to_lead_terms BOOLEAN NOT NULL DEFAULT FALSE,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS newsletter_subscribers (
		id           UUID PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		user_country TEXT NOT NULL DEFAULT 'unknown',
		user_city    TEXT,
		user_region  TEXT,
		quiz_answers JSONB,
		tags         TEXT[],
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

type PostgresClient struct {
	DB *sql.DB
}

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

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema creates the quiz tables in one transaction.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
