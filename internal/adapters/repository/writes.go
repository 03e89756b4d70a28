package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/okian/prhealth/internal/domain/model"
	"github.com/rotisserie/eris"
)

// UpsertAccount inserts or replaces an account and its follower counts in one transaction.
func (s *SQLStore) UpsertAccount(ctx context.Context, a model.Account) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin account upsert")
	}
	defer func() { _ = tx.Rollback() }()

	var declared any
	if a.DeclaredAudience != nil {
		declared = *a.DeclaredAudience
	}
	upsert := s.sb.Insert("accounts").
		Columns("id", "name", "industry", "is_active", "declared_audience", "newsroom_traffic").
		Values(a.ID, a.Name, a.Industry, boolInt(a.Active), declared, a.NewsroomTraffic).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			industry = excluded.industry,
			is_active = excluded.is_active,
			declared_audience = excluded.declared_audience,
			newsroom_traffic = excluded.newsroom_traffic`).
		RunWith(tx)
	if _, err := upsert.ExecContext(ctx); err != nil {
		return eris.Wrapf(err, "upsert account %s", a.ID)
	}

	if _, err := s.sb.Delete("account_followers").Where(sq.Eq{"account_id": a.ID}).RunWith(tx).ExecContext(ctx); err != nil {
		return eris.Wrapf(err, "clear followers of %s", a.ID)
	}
	if len(a.Followers) > 0 {
		ins := s.sb.Insert("account_followers").Columns("account_id", "channel", "followers")
		for channel, n := range a.Followers {
			ins = ins.Values(a.ID, channel, n)
		}
		if _, err := ins.RunWith(tx).ExecContext(ctx); err != nil {
			return eris.Wrapf(err, "insert followers of %s", a.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "commit account upsert")
	}
	return nil
}

// UpsertChannel inserts or replaces a channel.
func (s *SQLStore) UpsertChannel(ctx context.Context, c model.Channel) error {
	b := s.sb.Insert("channels").
		Columns("id", "account_id", "source_type").
		Values(c.ID, c.AccountID, c.SourceType).
		Suffix("ON CONFLICT (id) DO UPDATE SET account_id = excluded.account_id, source_type = excluded.source_type")
	_, err := s.exec(ctx, "upsert_channel", b)
	return err
}

// InsertPublication stores a publication unless its id already exists.
func (s *SQLStore) InsertPublication(ctx context.Context, p model.Publication) (bool, error) {
	b := s.sb.Insert("publications").
		Columns("id", "account_id", "channel_id", "published_at", "detected_at",
			"title", "body", "summary", "financial_class").
		Values(p.ID, p.AccountID, p.ChannelID, millis(p.PublishedAt), millis(p.DetectedAt),
			p.Title, p.Body, p.Summary, p.FinancialClass).
		Suffix("ON CONFLICT (id) DO NOTHING")
	res, err := s.exec(ctx, "insert_publication", b)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

// UpsertRelationship inserts or replaces a publication relationship.
func (s *SQLStore) UpsertRelationship(ctx context.Context, r model.Relationship) error {
	b := s.sb.Insert("publication_relationships").
		Columns(relationshipColumns...).
		Values(r.ID, r.AccountID, r.PublicationID, r.RelationshipType, r.MatchType, r.MatchStatus,
			optional(r.Source), optional(r.DomainAuthority), optional(r.IndustryMatch),
			optional(r.Sentiment), optional(r.Engagement), optional(r.SearchRank), millis(r.PublishedAt)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			source = excluded.source,
			domain_authority = excluded.domain_authority,
			industry_match = excluded.industry_match,
			sentiment = excluded.sentiment,
			engagement = excluded.engagement,
			search_rank = excluded.search_rank,
			published_at = excluded.published_at`)
	_, err := s.exec(ctx, "upsert_relationship", b)
	return err
}

func optional[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
