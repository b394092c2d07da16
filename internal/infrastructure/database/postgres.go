package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool for databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, opts ...func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.MaxConns == 0 {
		cfg.MaxConns = 8
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = 5 * time.Minute
	}
	if cfg.HealthCheckPeriod == 0 {
		cfg.HealthCheckPeriod = time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id                      TEXT PRIMARY KEY,
		participant_a           TEXT NOT NULL,
		participant_b           TEXT NOT NULL,
		participant_key         TEXT NOT NULL,
		context                 TEXT NOT NULL,
		last_sequence           BIGINT NOT NULL DEFAULT 0,
		last_message_id         TEXT,
		last_message_text       TEXT,
		last_message_sender_id  TEXT,
		last_message_created_at TIMESTAMPTZ,
		last_message_sequence   BIGINT,
		created_at              TIMESTAMPTZ NOT NULL,
		updated_at              TIMESTAMPTZ NOT NULL,
		CONSTRAINT conversations_key_context_unique UNIQUE (participant_key, context)
	)`,
	`CREATE INDEX IF NOT EXISTS conversations_participant_a_idx ON conversations (participant_a, updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS conversations_participant_b_idx ON conversations (participant_b, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations (id),
		sender_id       TEXT NOT NULL,
		text            TEXT NOT NULL,
		kind            TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		sequence        BIGINT NOT NULL,
		CONSTRAINT messages_conversation_sequence_unique UNIQUE (conversation_id, sequence)
	)`,
	`CREATE INDEX IF NOT EXISTS messages_order_idx ON messages (conversation_id, created_at, sequence)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		type       TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		message    TEXT NOT NULL DEFAULT '',
		metadata   JSONB,
		is_read    BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC)`,
}

// EnsureSchema creates the tables and indexes the Postgres repositories use.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}
