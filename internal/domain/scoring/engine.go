package scoring

import (
	"context"
	"time"

	"github.com/okian/prhealth/internal/domain/types"
	"github.com/okian/prhealth/pkg/logger"
	"github.com/okian/prhealth/pkg/metrics"
)

// Calculator names used in logs and metrics.
const (
	calcVelocity    = "velocity"
	calcReach       = "reach"
	calcCoverage    = "coverage"
	calcFindability = "findability"
)

// Trailing windows relative to the time of the call.
const (
	ScoringWindow   = 30 * 24 * time.Hour
	FrequencyWindow = 90 * 24 * time.Hour
)

const maxScore = 100.0

// Calculator produces one result per sub-score.
type Calculator interface {
	PublishingVelocity(ctx context.Context, accountID string) types.VelocityResult
	DistributionReach(ctx context.Context, accountID string) types.ReachResult
	CoverageQuality(ctx context.Context, accountID string) types.CoverageResult
	OrganicFindability(ctx context.Context, accountID string) types.FindabilityResult
}

// Engine implements Calculator on top of a Source.
type Engine struct {
	source    Source
	now       func() time.Time
	grouping  VelocityGrouping
	relevance RelevanceFunc
	logger    logger.Logger
}

var _ Calculator = (*Engine)(nil)

// NewEngine creates an Engine reading from source.
func NewEngine(source Source, opts ...Option) *Engine {
	e := &Engine{
		source:    source,
		now:       time.Now,
		grouping:  GroupByDetectionDate,
		relevance: FlatRelevance,
		logger:    logger.Get().Named("scoring"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// degraded logs and counts a failed read; the caller returns its baseline.
func (e *Engine) degraded(ctx context.Context, calculator, reason, accountID string, err error) {
	e.logger.Warn(ctx, "data read failed, using baseline",
		logger.String("calculator", calculator),
		logger.String("query", reason),
		logger.String("account_id", accountID),
		logger.Error(err),
	)
	metrics.RecordCalculatorDegraded(calculator, reason)
	metrics.RecordErrorByComponent("scoring", reason)
}

func (e *Engine) observe(calculator string, start time.Time, score float64) {
	metrics.RecordCalculatorLatency(calculator, float64(time.Since(start).Microseconds())/1000)
	metrics.RecordSubScore(calculator, score)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
