// Package service wires the record store, scoring engine and summary trigger
// pipeline behind the operations used by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	queue "github.com/okian/prhealth/internal/adapters/mq/queue"
	workerpool "github.com/okian/prhealth/internal/adapters/mq/worker"
	"github.com/okian/prhealth/internal/adapters/notify"
	repository "github.com/okian/prhealth/internal/adapters/repository"
	"github.com/okian/prhealth/internal/config"
	"github.com/okian/prhealth/internal/domain/dedupe"
	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/scoring"
	"github.com/okian/prhealth/internal/domain/types"
	"github.com/okian/prhealth/pkg/logger"
	"github.com/okian/prhealth/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Metric names accepted by Metric.
const (
	MetricVelocity    = "velocity"
	MetricReach       = "reach"
	MetricCoverage    = "coverage"
	MetricFindability = "findability"
)

// Trigger outcomes.
const (
	TriggerAccepted  = "accepted"
	TriggerDuplicate = "duplicate"
)

// TriggerResult reports what happened to a summary request.
type TriggerResult struct {
	Status    string             `json:"status"`
	Duplicate bool               `json:"duplicate"`
	TriggerID string             `json:"trigger_id,omitempty"`
	Report    types.HealthReport `json:"report"`
}

// Service implements the API dependencies for the PR health engine.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	store     repository.Store
	ownsStore bool
	engine    *scoring.Engine
	health    *scoring.HealthScorer
	deduper   dedupe.Deduper
	triggers  *queue.InMemoryQueue
	sink      notify.Sink
	pool      *workerpool.Pool
	composer  scoring.Composer

	// State
	started bool
	now     func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore uses an already opened store. The service does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSink replaces the sink built from configuration.
func WithSink(sink notify.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithComposer enables the overall score.
func WithComposer(c scoring.Composer) Option {
	return func(s *Service) { s.composer = c }
}

// WithClock overrides the time source for scoring and trigger dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. A nil cfg selects config.New defaults.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store when none was injected and starts the trigger pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting pr health service...")

	if err := s.cfg.Validate(); err != nil {
		return err
	}

	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store, s.ownsStore = store, true
	}

	grouping, _ := scoring.ParseVelocityGrouping(s.cfg.VelocityGrouping)
	s.engine = scoring.NewEngine(s.store,
		scoring.WithClock(s.now),
		scoring.WithVelocityGrouping(grouping),
	)
	hopts := []scoring.HealthOption{scoring.WithReportClock(s.now)}
	if s.cfg.Sequential {
		hopts = append(hopts, scoring.WithSequential())
	}
	if s.composer != nil {
		hopts = append(hopts, scoring.WithComposer(s.composer))
	}
	s.health = scoring.NewHealthScorer(s.engine, hopts...)

	if s.sink == nil {
		sink, err := BuildSink(s.cfg)
		if err != nil {
			s.closeStore()
			return err
		}
		s.sink = sink
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.TriggerDedupeSize))
	s.triggers = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.TriggerQueueSize))
	s.pool = workerpool.NewPool(s.cfg.TriggerWorkers, s.triggers, s.sink,
		workerpool.WithLogger(s.logger.Named("worker")))
	// workers outlive the start request
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "pr health service started",
		logger.String("driver", s.cfg.DBDriver),
		logger.String("sink", s.sink.Name()),
		logger.Int("triggerWorkers", s.cfg.TriggerWorkers),
		logger.Int("triggerQueueSize", s.cfg.TriggerQueueSize),
		logger.Bool("sequential", s.cfg.Sequential),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (*repository.SQLStore, error) {
	dsn, err := s.cfg.DSN()
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, s.cfg.DBDriver, dsn,
		repository.WithQueryTimeout(time.Duration(s.cfg.QueryTimeoutMS)*time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return store, nil
}

// BuildSink assembles the configured sinks. Without any, triggers are logged.
func BuildSink(cfg *config.Config) (notify.Sink, error) {
	var sinks []notify.Sink
	if cfg.SummaryWebhookURL != "" {
		wh, err := notify.NewWebhookSink(cfg.SummaryWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("webhook sink: %w", err)
		}
		sinks = append(sinks, wh)
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram sink: %w", err)
		}
		sinks = append(sinks, tg)
	}
	switch len(sinks) {
	case 0:
		return notify.NewLogSink(), nil
	case 1:
		return sinks[0], nil
	default:
		return notify.NewMultiSink(sinks...), nil
	}
}

// Stop drains pending triggers until ctx ends, then releases resources.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping pr health service...")

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	}
	s.closeStore()

	s.started = false
	s.logger.Info(ctx, "pr health service stopped")
	return err
}

func (s *Service) closeStore() {
	if !s.ownsStore {
		return
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.store, s.ownsStore = nil, false
}

func (s *Service) components() (repository.Store, *scoring.Engine, *scoring.HealthScorer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.store, s.engine, s.health, nil
}

func (s *Service) requireAccount(ctx context.Context, store repository.Store, accountID string) error {
	acct, err := store.Account(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", accountID, err)
	}
	if acct == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	return nil
}

// Health computes the full report for accountID.
func (s *Service) Health(ctx context.Context, accountID string) (types.HealthReport, error) {
	store, _, health, err := s.components()
	if err != nil {
		return types.HealthReport{}, err
	}
	if err := s.requireAccount(ctx, store, accountID); err != nil {
		return types.HealthReport{}, err
	}
	return health.Compute(ctx, accountID), nil
}

// Metric computes a single sub-score by name.
func (s *Service) Metric(ctx context.Context, accountID, name string) (any, error) {
	store, engine, _, err := s.components()
	if err != nil {
		return nil, err
	}

	var calc func(context.Context, string) any
	switch strings.ToLower(name) {
	case MetricVelocity:
		calc = func(ctx context.Context, id string) any { return engine.PublishingVelocity(ctx, id) }
	case MetricReach:
		calc = func(ctx context.Context, id string) any { return engine.DistributionReach(ctx, id) }
	case MetricCoverage:
		calc = func(ctx context.Context, id string) any { return engine.CoverageQuality(ctx, id) }
	case MetricFindability:
		calc = func(ctx context.Context, id string) any { return engine.OrganicFindability(ctx, id) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}

	if err := s.requireAccount(ctx, store, accountID); err != nil {
		return nil, err
	}
	return calc(ctx, accountID), nil
}

// TriggerSummary computes the report and queues one summary trigger per
// account per UTC day. Later requests on the same day are duplicates.
func (s *Service) TriggerSummary(ctx context.Context, accountID string) (TriggerResult, error) {
	report, err := s.Health(ctx, accountID)
	if err != nil {
		return TriggerResult{}, err
	}

	s.mu.RLock()
	deduper, triggers := s.deduper, s.triggers
	s.mu.RUnlock()

	t := model.SummaryTrigger{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		RequestedAt: s.now().UTC(),
		Report:      report,
	}
	key := t.DedupeKey()
	if deduper.SeenAndRecord(ctx, key) {
		metrics.RecordTriggerDuplicate()
		s.logger.Debug(ctx, "duplicate summary trigger", logger.String("key", key))
		return TriggerResult{Status: TriggerDuplicate, Duplicate: true, Report: report}, nil
	}
	if !triggers.Enqueue(ctx, t) {
		// allow a retry once the queue drains
		deduper.Unrecord(ctx, key)
		return TriggerResult{}, ErrBackpressure
	}
	return TriggerResult{Status: TriggerAccepted, TriggerID: t.ID, Report: report}, nil
}

// ScoreAccounts computes reports for accountIDs, or for every active account
// when none are given. Results keep the input order.
func (s *Service) ScoreAccounts(ctx context.Context, accountIDs []string) ([]types.HealthReport, error) {
	store, _, health, err := s.components()
	if err != nil {
		return nil, err
	}
	explicit := len(accountIDs) > 0
	if !explicit {
		accountIDs, err = store.ActiveAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list active accounts: %w", err)
		}
	}

	reports := make([]types.HealthReport, len(accountIDs))
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.BatchWorkers > 0 {
		g.SetLimit(s.cfg.BatchWorkers)
	}
	for i, id := range accountIDs {
		g.Go(func() error {
			if explicit {
				if err := s.requireAccount(gctx, store, id); err != nil {
					return err
				}
			}
			reports[i] = health.Compute(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	metrics.RecordBatchAccounts(len(reports))
	s.logger.Info(ctx, "batch scored", logger.Int("accounts", len(reports)))
	return reports, nil
}

// Delivered returns the number of summary triggers delivered successfully.
func (s *Service) Delivered() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil {
		return 0
	}
	return s.pool.Delivered()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"driver":           s.cfg.DBDriver,
		"sequential":       s.cfg.Sequential,
		"batchWorkers":     s.cfg.BatchWorkers,
		"triggerWorkers":   s.cfg.TriggerWorkers,
		"triggerQueueSize": s.cfg.TriggerQueueSize,
		"velocityGrouping": s.cfg.VelocityGrouping,
	}

	if s.started {
		stats["sink"] = s.sink.Name()
		stats["triggerQueueLength"] = s.triggers.Len(ctx)
		stats["triggersDeduped"] = s.deduper.Size()
		stats["triggersDelivered"] = s.pool.Delivered()
		stats["triggersFailed"] = s.pool.Failed()

		active, err := s.store.ActiveAccounts(ctx)
		if err != nil {
			s.logger.Warn(ctx, "stats: listing active accounts failed", logger.Error(err))
		} else {
			stats["activeAccounts"] = len(active)
		}
	}

	return stats
}
