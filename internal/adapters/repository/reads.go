package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/okian/prhealth/internal/domain/model"
)

var publicationColumns = []string{ //nolint:gochecknoglobals // column list
	"p.id", "p.account_id", "p.channel_id", "COALESCE(c.source_type, '')",
	"p.published_at", "p.detected_at", "p.title", "p.body", "p.summary", "p.financial_class",
}

var relationshipColumns = []string{ //nolint:gochecknoglobals // column list
	"id", "account_id", "publication_id", "relationship_type", "match_type", "match_status",
	"source", "domain_authority", "industry_match", "sentiment", "engagement", "search_rank", "published_at",
}

func (s *SQLStore) selectPublications() sq.SelectBuilder {
	return s.sb.Select(publicationColumns...).
		From("publications p").
		LeftJoin("channels c ON c.id = p.channel_id")
}

func scanPublication(rows *sql.Rows) (model.Publication, error) {
	var (
		p                   model.Publication
		published, detected sql.NullInt64
	)
	err := rows.Scan(&p.ID, &p.AccountID, &p.ChannelID, &p.ChannelType,
		&published, &detected, &p.Title, &p.Body, &p.Summary, &p.FinancialClass)
	p.PublishedAt = fromMillis(published)
	p.DetectedAt = fromMillis(detected)
	return p, err
}

func scanRelationship(rows *sql.Rows) (model.Relationship, error) {
	var (
		r                                  model.Relationship
		source                             sql.NullString
		da, industry, sentiment, eng, rank sql.NullFloat64
		published                          sql.NullInt64
	)
	err := rows.Scan(&r.ID, &r.AccountID, &r.PublicationID, &r.RelationshipType, &r.MatchType, &r.MatchStatus,
		&source, &da, &industry, &sentiment, &eng, &rank, &published)
	r.Source = nullString(source)
	r.DomainAuthority = nullFloat(da)
	r.IndustryMatch = nullFloat(industry)
	r.Sentiment = nullFloat(sentiment)
	r.Engagement = nullFloat(eng)
	r.SearchRank = nullFloat(rank)
	r.PublishedAt = fromMillis(published)
	return r, err
}

func (s *SQLStore) collectPublications(ctx context.Context, name string, b sq.SelectBuilder) ([]model.Publication, error) {
	var out []model.Publication
	err := s.query(ctx, name, b, func(rows *sql.Rows) error {
		p, err := scanPublication(rows)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func (s *SQLStore) collectRelationships(ctx context.Context, name string, b sq.SelectBuilder) ([]model.Relationship, error) {
	var out []model.Relationship
	err := s.query(ctx, name, b, func(rows *sql.Rows) error {
		r, err := scanRelationship(rows)
		if err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// VelocityPublications returns publications with both timestamps published since the given time.
func (s *SQLStore) VelocityPublications(ctx context.Context, accountID string, since time.Time) ([]model.Publication, error) {
	b := s.selectPublications().
		Where(sq.Eq{"p.account_id": accountID}).
		Where(sq.NotEq{"p.published_at": nil}).
		Where(sq.NotEq{"p.detected_at": nil}).
		Where(sq.GtOrEq{"p.published_at": since.UnixMilli()}).
		OrderBy("p.published_at", "p.id")
	return s.collectPublications(ctx, "velocity_publications", b)
}

// Publications returns publications since the given time, or all of them for a zero time.
// The publication timestamp falls back to the detection timestamp.
func (s *SQLStore) Publications(ctx context.Context, accountID string, since time.Time) ([]model.Publication, error) {
	b := s.selectPublications().
		Where(sq.Eq{"p.account_id": accountID}).
		OrderBy("p.id")
	if !since.IsZero() {
		b = b.Where(sq.Expr("COALESCE(p.published_at, p.detected_at) >= ?", since.UnixMilli()))
	}
	return s.collectPublications(ctx, "publications", b)
}

// Pickups returns exact affiliated newswire relationships with a source since the given time.
func (s *SQLStore) Pickups(ctx context.Context, accountID string, since time.Time, requireEnrichment bool) ([]model.Relationship, error) {
	b := s.sb.Select(relationshipColumns...).
		From("publication_relationships").
		Where(sq.Eq{
			"account_id":        accountID,
			"relationship_type": model.RelationshipAffiliated,
			"match_type":        model.MatchTypeNewswire,
			"match_status":      model.MatchStatusExact,
		}).
		Where(sq.NotEq{"source": nil}).
		Where(sq.GtOrEq{"published_at": since.UnixMilli()}).
		OrderBy("id")
	name := "pickups"
	if requireEnrichment {
		b = b.Where(sq.NotEq{"domain_authority": nil})
		name = "enriched_pickups"
	}
	return s.collectRelationships(ctx, name, b)
}

// RankedRelationships returns every relationship of the account with a positive search rank.
func (s *SQLStore) RankedRelationships(ctx context.Context, accountID string) ([]model.Relationship, error) {
	b := s.sb.Select(relationshipColumns...).
		From("publication_relationships").
		Where(sq.Eq{"account_id": accountID}).
		Where(sq.Gt{"search_rank": 0}).
		OrderBy("id")
	return s.collectRelationships(ctx, "ranked_relationships", b)
}

// Account returns the account with its follower counts, or nil if it does not exist.
func (s *SQLStore) Account(ctx context.Context, accountID string) (*model.Account, error) {
	var (
		found bool
		a     model.Account
	)
	b := s.sb.Select("id", "name", "industry", "is_active", "declared_audience", "newsroom_traffic").
		From("accounts").
		Where(sq.Eq{"id": accountID})
	err := s.query(ctx, "account", b, func(rows *sql.Rows) error {
		var (
			active   int
			declared sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Industry, &active, &declared, &a.NewsroomTraffic); err != nil {
			return err
		}
		a.Active = active != 0
		if declared.Valid {
			v := declared.Int64
			a.DeclaredAudience = &v
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, err
	}

	a.Followers = make(map[string]int64)
	fb := s.sb.Select("channel", "followers").
		From("account_followers").
		Where(sq.Eq{"account_id": accountID})
	err = s.query(ctx, "account_followers", fb, func(rows *sql.Rows) error {
		var (
			channel string
			n       int64
		)
		if err := rows.Scan(&channel, &n); err != nil {
			return err
		}
		a.Followers[channel] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// IndustryPeers returns active accounts of the industry other than excludeID.
// Reach is the declared audience when positive, otherwise the follower total.
func (s *SQLStore) IndustryPeers(ctx context.Context, industry, excludeID string) ([]model.PeerReach, error) {
	b := s.sb.Select("a.id", "a.declared_audience", "COALESCE(SUM(f.followers), 0)").
		From("accounts a").
		LeftJoin("account_followers f ON f.account_id = a.id").
		Where(sq.Eq{"a.industry": industry, "a.is_active": 1}).
		Where(sq.NotEq{"a.id": excludeID}).
		GroupBy("a.id", "a.declared_audience").
		OrderBy("a.id")

	var out []model.PeerReach
	err := s.query(ctx, "industry_peers", b, func(rows *sql.Rows) error {
		var (
			p         model.PeerReach
			declared  sql.NullInt64
			followers int64
		)
		if err := rows.Scan(&p.AccountID, &declared, &followers); err != nil {
			return err
		}
		p.Reach = float64(followers)
		if declared.Valid && declared.Int64 > 0 {
			p.Reach = float64(declared.Int64)
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// ActiveAccounts lists active account ids.
func (s *SQLStore) ActiveAccounts(ctx context.Context) ([]string, error) {
	b := s.sb.Select("id").From("accounts").Where(sq.Eq{"is_active": 1}).OrderBy("id")
	var ids []string
	err := s.query(ctx, "active_accounts", b, func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// FindChannel returns the first channel of the account with the given source type.
func (s *SQLStore) FindChannel(ctx context.Context, accountID, sourceType string) (model.Channel, error) {
	b := s.sb.Select("id", "account_id", "source_type").
		From("channels").
		Where(sq.Eq{"account_id": accountID, "source_type": sourceType}).
		OrderBy("id").
		Limit(1)

	var (
		c     model.Channel
		found bool
	)
	err := s.query(ctx, "find_channel", b, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(&c.ID, &c.AccountID, &c.SourceType)
	})
	if err != nil {
		return model.Channel{}, err
	}
	if !found {
		return model.Channel{}, ErrNotFound
	}
	return c, nil
}
