// Package ingest loads an account's media-room RSS or Atom feed into publications.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/okian/prhealth/internal/adapters/repository"
	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/scoring"
	"github.com/okian/prhealth/pkg/logger"
)

// MediaRoomChannel is the channel type feeds are recorded under.
const MediaRoomChannel = "media room"

const summaryRunes = 300

// Store is what the ingester needs from the repository.
type Store interface {
	FindChannel(ctx context.Context, accountID, sourceType string) (model.Channel, error)
	repository.Writer
}

// Result summarizes one ingest run.
type Result struct {
	ChannelID string `json:"channel_id" yaml:"channel_id"`
	Items     int    `json:"items" yaml:"items"`
	Inserted  int    `json:"inserted" yaml:"inserted"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
}

// Ingester turns feed items into publications.
type Ingester struct {
	store  Store
	parser *gofeed.Parser
	now    func() time.Time
	logger logger.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithClock overrides the detection timestamp source.
func WithClock(now func() time.Time) Option {
	return func(i *Ingester) {
		if now != nil {
			i.now = now
		}
	}
}

// WithUserAgent sets the User-Agent sent when fetching feeds.
func WithUserAgent(ua string) Option {
	return func(i *Ingester) {
		if ua != "" {
			i.parser.UserAgent = ua
		}
	}
}

// New creates an Ingester writing to store.
func New(store Store, opts ...Option) *Ingester {
	i := &Ingester{
		store:  store,
		parser: gofeed.NewParser(),
		now:    time.Now,
		logger: logger.Get().Named("ingest"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestURL fetches the feed at url and records its items for accountID.
func (i *Ingester) IngestURL(ctx context.Context, accountID, url string) (Result, error) {
	if accountID == "" {
		return Result{}, ErrMissingAccount
	}
	feed, err := i.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w %s: %w", ErrFetchFeed, url, err)
	}
	return i.record(ctx, accountID, feed)
}

// IngestReader parses a feed document from r and records its items for accountID.
func (i *Ingester) IngestReader(ctx context.Context, accountID string, r io.Reader) (Result, error) {
	if accountID == "" {
		return Result{}, ErrMissingAccount
	}
	feed, err := i.parser.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrFetchFeed, err)
	}
	return i.record(ctx, accountID, feed)
}

func (i *Ingester) record(ctx context.Context, accountID string, feed *gofeed.Feed) (Result, error) {
	ch, err := i.channel(ctx, accountID)
	if err != nil {
		return Result{}, err
	}

	res := Result{ChannelID: ch.ID, Items: len(feed.Items)}
	detected := i.now().UTC()
	for _, item := range feed.Items {
		pub, ok := publication(accountID, ch.ID, item, detected)
		if !ok {
			res.Skipped++
			continue
		}
		inserted, err := i.store.InsertPublication(ctx, pub)
		if err != nil {
			return res, fmt.Errorf("store publication %s: %w", pub.ID, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}

	i.logger.Info(ctx, "feed ingested",
		logger.String("account_id", accountID),
		logger.String("feed", feed.Title),
		logger.Int("items", res.Items),
		logger.Int("inserted", res.Inserted),
	)
	return res, nil
}

// channel finds the account's media room or creates one with a stable id.
func (i *Ingester) channel(ctx context.Context, accountID string) (model.Channel, error) {
	ch, err := i.store.FindChannel(ctx, accountID, MediaRoomChannel)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Channel{}, fmt.Errorf("find channel: %w", err)
	}

	ch = model.Channel{
		ID:         stableID(accountID, MediaRoomChannel),
		AccountID:  accountID,
		SourceType: MediaRoomChannel,
	}
	if err := i.store.UpsertChannel(ctx, ch); err != nil {
		return model.Channel{}, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

func publication(accountID, channelID string, item *gofeed.Item, detected time.Time) (model.Publication, bool) {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" || strings.TrimSpace(item.Title) == "" {
		return model.Publication{}, false
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	pub := model.Publication{
		ID:          stableID(accountID, key),
		AccountID:   accountID,
		ChannelID:   channelID,
		ChannelType: MediaRoomChannel,
		DetectedAt:  &detected,
		Title:       strings.TrimSpace(item.Title),
		Body:        body,
		Summary:     truncate(strings.Join(strings.Fields(scoring.StripMarkup(summary)), " "), summaryRunes),
	}
	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		pub.PublishedAt = &t
	case item.UpdatedParsed != nil:
		t := item.UpdatedParsed.UTC()
		pub.PublishedAt = &t
	}
	return pub, true
}

// stableID derives a deterministic id so re-ingesting a feed is idempotent.
func stableID(accountID, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(accountID+"|"+key)).String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
