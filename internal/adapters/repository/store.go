// Package repository provides the SQL-backed record store read by the scoring engine.
package repository

import (
	"context"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/scoring"
)

// Store is the read-only view of publications, relationships and accounts.
type Store interface {
	scoring.Source

	// ActiveAccounts lists the ids of every active account, ordered by id.
	ActiveAccounts(ctx context.Context) ([]string, error)

	// FindChannel returns the account's channel of the given source type.
	// Returns ErrNotFound if there is none.
	FindChannel(ctx context.Context, accountID, sourceType string) (model.Channel, error)

	// Ping checks the database connection.
	Ping(ctx context.Context) error
}

// Writer loads records. It is used by seeding and ingest tooling only.
type Writer interface {
	// UpsertAccount inserts or replaces an account together with its follower counts.
	UpsertAccount(ctx context.Context, a model.Account) error
	// UpsertChannel inserts or replaces a channel.
	UpsertChannel(ctx context.Context, c model.Channel) error
	// InsertPublication stores a publication; existing ids are left untouched.
	// Returns true when a row was written.
	InsertPublication(ctx context.Context, p model.Publication) (bool, error)
	// UpsertRelationship inserts or replaces a publication relationship.
	UpsertRelationship(ctx context.Context, r model.Relationship) error
}

var (
	_ Store  = (*SQLStore)(nil)
	_ Writer = (*SQLStore)(nil)
)
