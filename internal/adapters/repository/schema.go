package repository

import (
	"context"

	"github.com/rotisserie/eris"
)

// Timestamps are stored as unix milliseconds so the same DDL runs on sqlite and Postgres.
var schema = []string{ //nolint:gochecknoglobals // DDL
	`CREATE TABLE IF NOT EXISTS accounts (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL DEFAULT '',
		industry          TEXT NOT NULL DEFAULT '',
		is_active         INTEGER NOT NULL DEFAULT 1,
		declared_audience BIGINT,
		newsroom_traffic  BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_industry ON accounts(industry)`,
	`CREATE TABLE IF NOT EXISTS account_followers (
		account_id TEXT NOT NULL,
		channel    TEXT NOT NULL,
		followers  BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (account_id, channel)
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id          TEXT PRIMARY KEY,
		account_id  TEXT NOT NULL,
		source_type TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channels_account ON channels(account_id)`,
	`CREATE TABLE IF NOT EXISTS publications (
		id              TEXT PRIMARY KEY,
		account_id      TEXT NOT NULL,
		channel_id      TEXT NOT NULL DEFAULT '',
		published_at    BIGINT,
		detected_at     BIGINT,
		title           TEXT NOT NULL DEFAULT '',
		body            TEXT NOT NULL DEFAULT '',
		summary         TEXT NOT NULL DEFAULT '',
		financial_class TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_publications_account_published ON publications(account_id, published_at)`,
	`CREATE TABLE IF NOT EXISTS publication_relationships (
		id                TEXT PRIMARY KEY,
		account_id        TEXT NOT NULL,
		publication_id    TEXT NOT NULL DEFAULT '',
		relationship_type TEXT NOT NULL DEFAULT '',
		match_type        TEXT NOT NULL DEFAULT '',
		match_status      TEXT NOT NULL DEFAULT '',
		source            TEXT,
		domain_authority  DOUBLE PRECISION,
		industry_match    DOUBLE PRECISION,
		sentiment         DOUBLE PRECISION,
		engagement        DOUBLE PRECISION,
		search_rank       DOUBLE PRECISION,
		published_at      BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_account_published ON publication_relationships(account_id, published_at)`,
}

// Migrate creates the tables and indexes if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "apply schema")
		}
	}
	return nil
}
