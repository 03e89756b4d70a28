package scoring

import (
	"context"
	"math"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/types"
)

const (
	// CoverageBaseline is the neutral score used when no qualifying pickup exists.
	CoverageBaseline = 50.0

	// MinDomainAuthority excludes pickups from low-authority domains.
	MinDomainAuthority = 10.0

	defaultIndustryMatch = 0.5
	defaultSentiment     = 0.0
	defaultEngagement    = 0.0

	weightAuthority     = 0.40
	weightIndustryMatch = 0.30
	weightSentiment     = 0.20
	weightEngagement    = 0.10
)

// CoverageQuality scores enriched pickups by authority, relevance, tone and engagement.
func (e *Engine) CoverageQuality(ctx context.Context, accountID string) (res types.CoverageResult) {
	start := time.Now()
	defer func() { e.observe(calcCoverage, start, res.Score) }()

	rows, err := e.source.Pickups(ctx, accountID, e.now().Add(-ScoringWindow), true)
	if err != nil {
		e.degraded(ctx, calcCoverage, "enriched_pickups", accountID, err)
		return coverageBaseline(types.CoverageResult{})
	}
	return computeCoverage(rows)
}

func computeCoverage(rows []model.Relationship) types.CoverageResult {
	var res types.CoverageResult
	var sum, da, im, sent, eng float64
	for _, r := range rows {
		if !r.IsNewswirePickup() || !r.IsEnriched() {
			continue
		}
		if *r.DomainAuthority < MinDomainAuthority {
			res.ExcludedLowAuthority++
			continue
		}
		a := *r.DomainAuthority
		i := valueOr(r.IndustryMatch, defaultIndustryMatch)
		s := valueOr(r.Sentiment, defaultSentiment)
		g := valueOr(r.Engagement, defaultEngagement)

		sum += PickupQuality(a, i, s, g)
		da += a
		im += i
		sent += s
		eng += g
		res.QualifiedPickups++
	}
	if res.QualifiedPickups == 0 {
		return coverageBaseline(res)
	}

	n := float64(res.QualifiedPickups)
	res.Score = math.Round(sum / n)
	res.AvgDomainAuthority = da / n
	res.AvgIndustryMatch = im / n
	res.AvgSentiment = sent / n
	res.AvgEngagement = eng / n
	return res
}

// PickupQuality scores one pickup. Industry match and sentiment are fractions
// (sentiment in [-1,1]); authority and engagement are already on a 0-100 scale.
func PickupQuality(authority, industryMatch, sentiment, engagement float64) float64 {
	return authority*weightAuthority +
		industryMatch*100*weightIndustryMatch +
		(sentiment+1)/2*100*weightSentiment +
		engagement*weightEngagement
}

func coverageBaseline(res types.CoverageResult) types.CoverageResult {
	res.Score = CoverageBaseline
	res.Baseline = true
	return res
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
