// Package scoring computes the four PR Health sub-scores of an account.
//
// Every calculator reads through Source, never mutates what it reads, and
// falls back to a documented baseline when a read fails.
package scoring

import (
	"context"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
)

// Source is the read-only data access the calculators depend on.
type Source interface {
	// VelocityPublications returns publications since the given time that carry both
	// a publication and a detection timestamp, joined with their channel type.
	VelocityPublications(ctx context.Context, accountID string, since time.Time) ([]model.Publication, error)

	// Publications returns publications since the given time; a zero since means all.
	Publications(ctx context.Context, accountID string, since time.Time) ([]model.Publication, error)

	// Pickups returns affiliated, exact newswire relationships with a source since the
	// given time. requireEnrichment limits the rows to those with domain authority.
	Pickups(ctx context.Context, accountID string, since time.Time, requireEnrichment bool) ([]model.Relationship, error)

	// RankedRelationships returns every relationship of the account with a positive search rank.
	RankedRelationships(ctx context.Context, accountID string) ([]model.Relationship, error)

	// Account returns the account, or nil when it does not exist.
	Account(ctx context.Context, accountID string) (*model.Account, error)

	// IndustryPeers returns the reach of active accounts in industry, excluding excludeID.
	IndustryPeers(ctx context.Context, industry, excludeID string) ([]model.PeerReach, error)
}
