package scoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/scoring"
	"github.com/okian/prhealth/pkg/logger"
)

var (
	now       = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	errFailed = errors.New("connection reset")
)

// fakeSource serves fixed records and filters them the way the SQL store does.
type fakeSource struct {
	pubs      []model.Publication
	rels      []model.Relationship
	accounts  map[string]model.Account
	peers     []model.PeerReach
	fail      map[string]bool
	peerCalls int
}

func (f *fakeSource) err(method string) error {
	if f.fail[method] {
		return errFailed
	}
	return nil
}

func (f *fakeSource) VelocityPublications(_ context.Context, accountID string, since time.Time) ([]model.Publication, error) {
	if err := f.err("velocity"); err != nil {
		return nil, err
	}
	var out []model.Publication
	for _, p := range f.pubs {
		if p.AccountID == accountID && p.PublishedAt != nil && p.DetectedAt != nil && !p.PublishedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) Publications(_ context.Context, accountID string, since time.Time) ([]model.Publication, error) {
	if err := f.err("publications"); err != nil {
		return nil, err
	}
	var out []model.Publication
	for _, p := range f.pubs {
		ts, _ := p.Timestamp()
		if p.AccountID == accountID && (since.IsZero() || !ts.Before(since)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) Pickups(_ context.Context, accountID string, since time.Time, requireEnrichment bool) ([]model.Relationship, error) {
	if err := f.err("pickups"); err != nil {
		return nil, err
	}
	var out []model.Relationship
	for _, r := range f.rels {
		if r.AccountID != accountID || !r.IsNewswirePickup() {
			continue
		}
		if r.PublishedAt != nil && r.PublishedAt.Before(since) {
			continue
		}
		if requireEnrichment && !r.IsEnriched() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSource) RankedRelationships(_ context.Context, accountID string) ([]model.Relationship, error) {
	if err := f.err("ranked"); err != nil {
		return nil, err
	}
	var out []model.Relationship
	for _, r := range f.rels {
		if r.AccountID == accountID && r.SearchRank != nil && *r.SearchRank > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) Account(_ context.Context, accountID string) (*model.Account, error) {
	if err := f.err("account"); err != nil {
		return nil, err
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeSource) IndustryPeers(_ context.Context, _, _ string) ([]model.PeerReach, error) {
	f.peerCalls++
	if err := f.err("peers"); err != nil {
		return nil, err
	}
	return f.peers, nil
}

func newEngine(t *testing.T, src scoring.Source, opts ...scoring.Option) *scoring.Engine {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	opts = append([]scoring.Option{scoring.WithClock(func() time.Time { return now })}, opts...)
	return scoring.NewEngine(src, opts...)
}

func ptr[T any](v T) *T { return &v }

func at(t time.Time) *time.Time { return &t }

func pickup(account, source string) model.Relationship {
	return model.Relationship{
		AccountID:        account,
		RelationshipType: model.RelationshipAffiliated,
		MatchType:        model.MatchTypeNewswire,
		MatchStatus:      model.MatchStatusExact,
		Source:           ptr(source),
		PublishedAt:      at(now.Add(-48 * time.Hour)),
	}
}
