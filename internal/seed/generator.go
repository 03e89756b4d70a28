// Package seed generates a synthetic but plausible PR dataset for local runs and demos.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/prhealth/internal/adapters/repository"
	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/pkg/logger"
)

type generator struct {
	w   repository.Writer
	cfg Config
	rng *rand.Rand
	st  *Stats
}

// Run writes a generated dataset through w.
func Run(ctx context.Context, w repository.Writer, cfg Config) (*Stats, error) {
	if cfg.Accounts <= 0 {
		cfg.Accounts = DefaultAccounts
	}
	if cfg.PublicationsPerAccount < 0 {
		cfg.PublicationsPerAccount = DefaultPublicationsPerAccount
	}
	if cfg.RelationshipsPerRelease < 0 {
		cfg.RelationshipsPerRelease = DefaultRelationshipsPerRelease
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}

	start := time.Now()
	g := &generator{
		w:   w,
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)), //nolint:gosec // synthetic data
		st:  &Stats{},
	}
	log := logger.Get().Named("seed")
	log.Info(ctx, "generating dataset",
		logger.Int("accounts", cfg.Accounts),
		logger.Int("publicationsPerAccount", cfg.PublicationsPerAccount))

	for i := 0; i < cfg.Accounts; i++ {
		if err := ctx.Err(); err != nil {
			return g.st, fmt.Errorf("seeding cancelled: %w", err)
		}
		if err := g.account(ctx, i); err != nil {
			return g.st, err
		}
	}

	g.st.Duration = time.Since(start)
	log.Info(ctx, "dataset generated",
		logger.Int("accounts", g.st.Accounts),
		logger.Int("publications", g.st.Publications),
		logger.Int("relationships", g.st.Relationships),
		logger.Duration("took", g.st.Duration))
	return g.st, nil
}

func (g *generator) account(ctx context.Context, index int) error {
	id := uuid.New().String()
	followers := make(map[string]int64, len(socialChannels))
	for _, ch := range socialChannels {
		followers[ch] = g.rng.Int64N(maxFollowers)
	}
	acct := model.Account{
		ID:              id,
		Name:            fmt.Sprintf("Account %02d", index+1),
		Industry:        industries[index%len(industries)],
		Active:          true,
		Followers:       followers,
		NewsroomTraffic: g.rng.Int64N(maxNewsroomVisit),
	}
	if err := g.w.UpsertAccount(ctx, acct); err != nil {
		return fmt.Errorf("seed account %s: %w", id, err)
	}
	g.st.Accounts++
	g.st.AccountIDs = append(g.st.AccountIDs, id)

	room := model.Channel{ID: uuid.New().String(), AccountID: id, SourceType: "media room"}
	channels := []model.Channel{room}
	for _, st := range socialChannels {
		channels = append(channels, model.Channel{ID: uuid.New().String(), AccountID: id, SourceType: st})
	}
	for _, ch := range channels {
		if err := g.w.UpsertChannel(ctx, ch); err != nil {
			return fmt.Errorf("seed channel %s: %w", ch.ID, err)
		}
		g.st.Channels++
	}

	for j := 0; j < g.cfg.PublicationsPerAccount; j++ {
		if err := g.release(ctx, id, channels); err != nil {
			return err
		}
	}
	return nil
}

// release writes one media room publication, its syndicated copies and its pickups.
func (g *generator) release(ctx context.Context, accountID string, channels []model.Channel) error {
	published := g.cfg.Now.Add(-g.duration(releaseSpread)).Truncate(time.Minute)
	detected := published.Add(g.duration(maxDetectLag))
	title := g.headline()
	body := "<p>" + title + ". " + g.sentence(24) + "</p><p>" + g.sentence(18) + "</p>"

	orig := model.Publication{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		ChannelID:   channels[0].ID,
		ChannelType: channels[0].SourceType,
		PublishedAt: &published,
		DetectedAt:  &detected,
		Title:       title,
		Body:        body,
		Summary:     g.sentence(12),
	}
	if err := g.insert(ctx, orig); err != nil {
		return err
	}

	for _, ch := range channels[1:] {
		if g.rng.Float64() > syndicationOdds {
			continue
		}
		at := published.Add(g.duration(maxSyndicateLag))
		copyPub := orig
		copyPub.ID = uuid.New().String()
		copyPub.ChannelID = ch.ID
		copyPub.ChannelType = ch.SourceType
		copyPub.PublishedAt = &at
		copyPub.DetectedAt = &detected
		if err := g.insert(ctx, copyPub); err != nil {
			return err
		}
	}

	n := 0
	if g.cfg.RelationshipsPerRelease > 0 {
		n = g.rng.IntN(g.cfg.RelationshipsPerRelease + 1)
	}
	for k := 0; k < n; k++ {
		if err := g.pickup(ctx, orig, published); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) pickup(ctx context.Context, pub model.Publication, published time.Time) error { //nolint:gocritic // hugeParam: fixture value
	source := pickupDomains[g.rng.IntN(len(pickupDomains))] + strings.ReplaceAll(strings.ToLower(pub.Title), " ", "-")
	at := published.Add(g.duration(maxPickupLag))
	rel := model.Relationship{
		ID:               uuid.New().String(),
		AccountID:        pub.AccountID,
		PublicationID:    pub.ID,
		RelationshipType: model.RelationshipAffiliated,
		MatchType:        model.MatchTypeNewswire,
		MatchStatus:      model.MatchStatusExact,
		Source:           &source,
		PublishedAt:      &at,
	}
	if g.rng.Float64() < enrichmentOdds {
		da := float64(5 + g.rng.IntN(90))
		im := g.rng.Float64()
		sent := g.rng.Float64()*2 - 1
		eng := g.rng.Float64()
		rel.DomainAuthority, rel.IndustryMatch, rel.Sentiment, rel.Engagement = &da, &im, &sent, &eng
	}
	if g.rng.Float64() < rankedOdds {
		rank := float64(1 + g.rng.IntN(maxSearchRank))
		rel.SearchRank = &rank
	}
	if err := g.w.UpsertRelationship(ctx, rel); err != nil {
		return fmt.Errorf("seed relationship %s: %w", rel.ID, err)
	}
	g.st.Relationships++
	return nil
}

func (g *generator) insert(ctx context.Context, p model.Publication) error { //nolint:gocritic // hugeParam: fixture value
	ok, err := g.w.InsertPublication(ctx, p)
	if err != nil {
		return fmt.Errorf("seed publication %s: %w", p.ID, err)
	}
	if ok {
		g.st.Publications++
	}
	return nil
}

func (g *generator) duration(upper time.Duration) time.Duration {
	return time.Duration(g.rng.Int64N(int64(upper)))
}

func (g *generator) headline() string {
	words := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		words = append(words, headlineWords[g.rng.IntN(len(headlineWords))])
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

func (g *generator) sentence(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = headlineWords[g.rng.IntN(len(headlineWords))]
	}
	return strings.Join(words, " ") + "."
}
