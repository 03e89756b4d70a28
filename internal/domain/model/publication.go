// Package model contains domain models passed between layers.
package model

import "time"

// Relationship classification values that mark a confirmed newswire pickup.
const (
	RelationshipAffiliated = "affiliated"
	MatchTypeNewswire      = "newswire"
	MatchStatusExact       = "exact"
)

// Publication is a press release or post authored by an account on one of its channels.
type Publication struct {
	ID             string
	AccountID      string
	ChannelID      string
	ChannelType    string     // source type of the channel, e.g. "media room", "linkedin"
	PublishedAt    *time.Time // original publication timestamp
	DetectedAt     *time.Time // when the scraper first saw it
	Title          string
	Body           string
	Summary        string
	FinancialClass string
}

// Timestamp returns the publication timestamp, falling back to detection time.
func (p Publication) Timestamp() (time.Time, bool) {
	switch {
	case p.PublishedAt != nil:
		return *p.PublishedAt, true
	case p.DetectedAt != nil:
		return *p.DetectedAt, true
	default:
		return time.Time{}, false
	}
}

// Channel is a distribution outlet owned by an account.
type Channel struct {
	ID         string
	AccountID  string
	SourceType string
}

// Relationship links a publication to an external mention of it.
type Relationship struct {
	ID               string
	AccountID        string
	PublicationID    string
	RelationshipType string
	MatchType        string
	MatchStatus      string
	Source           *string // originating URL or domain

	// Optional enrichment.
	DomainAuthority *float64
	IndustryMatch   *float64
	Sentiment       *float64
	Engagement      *float64
	SearchRank      *float64

	PublishedAt *time.Time
}

// IsNewswirePickup reports whether the row is an exact affiliated newswire match with a source.
func (r Relationship) IsNewswirePickup() bool {
	return r.RelationshipType == RelationshipAffiliated &&
		r.MatchType == MatchTypeNewswire &&
		r.MatchStatus == MatchStatusExact &&
		r.Source != nil
}

// IsEnriched reports whether domain authority has been computed for the row.
func (r Relationship) IsEnriched() bool {
	return r.DomainAuthority != nil
}
