package scoring

import (
	"context"
	"time"

	"github.com/okian/prhealth/internal/domain/types"
	"github.com/okian/prhealth/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Composer turns the four sub-scores into one overall score.
// ok=false leaves HealthReport.Overall unset.
type Composer interface {
	Compose(report types.HealthReport) (overall float64, ok bool)
}

// ComposerFunc adapts a function to Composer.
type ComposerFunc func(report types.HealthReport) (float64, bool)

// Compose calls f.
func (f ComposerFunc) Compose(report types.HealthReport) (float64, bool) { return f(report) }

// HealthOption applies a configuration option to the HealthScorer.
type HealthOption func(*HealthScorer)

// WithSequential computes sub-scores one after another.
func WithSequential() HealthOption {
	return func(h *HealthScorer) { h.sequential = true }
}

// WithComposer sets the overall-score composer.
func WithComposer(c Composer) HealthOption {
	return func(h *HealthScorer) { h.composer = c }
}

// WithReportClock overrides the time stamped on reports.
func WithReportClock(now func() time.Time) HealthOption {
	return func(h *HealthScorer) {
		if now != nil {
			h.now = now
		}
	}
}

// HealthScorer bundles the four sub-scores of an account into one report.
type HealthScorer struct {
	calc       Calculator
	sequential bool
	composer   Composer
	now        func() time.Time
}

// NewHealthScorer creates a HealthScorer over calc.
func NewHealthScorer(calc Calculator, opts ...HealthOption) *HealthScorer {
	h := &HealthScorer{calc: calc, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Compute runs every calculator for accountID. Calculators absorb their own
// read failures, so a report is always produced.
func (h *HealthScorer) Compute(ctx context.Context, accountID string) types.HealthReport {
	report := types.HealthReport{
		AccountID:  accountID,
		ComputedAt: h.now().UTC(),
	}

	if h.sequential {
		report.Velocity = h.calc.PublishingVelocity(ctx, accountID)
		report.Reach = h.calc.DistributionReach(ctx, accountID)
		report.Coverage = h.calc.CoverageQuality(ctx, accountID)
		report.Findability = h.calc.OrganicFindability(ctx, accountID)
	} else {
		// each goroutine owns one field of report
		var g errgroup.Group
		g.Go(func() error {
			report.Velocity = h.calc.PublishingVelocity(ctx, accountID)
			return nil
		})
		g.Go(func() error {
			report.Reach = h.calc.DistributionReach(ctx, accountID)
			return nil
		})
		g.Go(func() error {
			report.Coverage = h.calc.CoverageQuality(ctx, accountID)
			return nil
		})
		g.Go(func() error {
			report.Findability = h.calc.OrganicFindability(ctx, accountID)
			return nil
		})
		_ = g.Wait()
	}

	if h.composer != nil {
		if overall, ok := h.composer.Compose(report); ok {
			report.Overall = &overall
		}
	}
	metrics.RecordHealthReport()
	return report
}
