package scoring

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/types"
)

// SingleDocFrequencyScore is the frequency score for exactly one publication in the window.
const SingleDocFrequencyScore = 20.0

// OrganicFindability scores search visibility, topical breadth and publishing cadence.
func (e *Engine) OrganicFindability(ctx context.Context, accountID string) (res types.FindabilityResult) {
	start := time.Now()
	defer func() { e.observe(calcFindability, start, res.Score) }()

	ranked, err := e.source.RankedRelationships(ctx, accountID)
	if err != nil {
		e.degraded(ctx, calcFindability, "ranked_relationships", accountID, err)
		ranked = nil
	}
	searchRank(&res, ranked)

	pubs, err := e.source.Publications(ctx, accountID, time.Time{})
	if err != nil {
		e.degraded(ctx, calcFindability, "publications", accountID, err)
		pubs = nil
	}
	topicCoverage(&res, pubs)
	publicationFrequency(&res, pubs, e.now().Add(-FrequencyWindow))

	res.Score = math.Round((res.SearchRankScore + res.TopicCoverageScore + res.FrequencyScore) / 3)
	return res
}

func searchRank(res *types.FindabilityResult, rows []model.Relationship) {
	var sum float64
	for _, r := range rows {
		if r.SearchRank == nil || *r.SearchRank <= 0 {
			continue
		}
		sum += *r.SearchRank
		res.RankedResults++
	}
	if res.RankedResults == 0 {
		return
	}
	res.AvgRankPosition = sum / float64(res.RankedResults)
	res.SearchRankScore = RankPositionScore(res.AvgRankPosition)
}

func topicCoverage(res *types.FindabilityResult, pubs []model.Publication) {
	set := make(map[string]struct{})
	for _, p := range pubs {
		PublicationKeywords(p, set)
	}
	res.UniqueKeywords = len(set)
	res.TopicCoverageScore = TopicCoverageScore(res.UniqueKeywords)
}

func publicationFrequency(res *types.FindabilityResult, pubs []model.Publication, since time.Time) {
	var stamps []time.Time
	for _, p := range pubs {
		ts, ok := p.Timestamp()
		if !ok || ts.Before(since) {
			continue
		}
		stamps = append(stamps, ts)
	}
	res.RecentPublications = len(stamps)

	switch len(stamps) {
	case 0:
		return
	case 1:
		res.FrequencyScore = SingleDocFrequencyScore
		return
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	// mean of consecutive gaps telescopes to the overall span
	span := stamps[len(stamps)-1].Sub(stamps[0])
	res.AvgGapDays = span.Hours() / 24 / float64(len(stamps)-1)
	res.FrequencyScore = FrequencyScore(res.AvgGapDays)
}

// RankPositionScore maps an average search position to 0-100. Position 1 is best.
func RankPositionScore(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p <= 1:
		return 100
	case p <= 10:
		return 100 - (p - 1)
	case p <= 20:
		return 91 - (p-10)*0.5
	case p <= 50:
		return 86 - (p-20)*0.2
	default:
		return math.Max(0, 80-(p-50)*0.1)
	}
}

// TopicCoverageScore maps a count of unique keywords to 0-100.
func TopicCoverageScore(n int) float64 {
	switch {
	case n <= 0:
		return 0
	case n <= 10:
		return 3 * float64(n)
	case n <= 50:
		return 30 + float64(n-10)
	default:
		return math.Min(maxScore, 70+float64(n-50)*0.6)
	}
}

// FrequencyScore maps a mean gap in days between publications to 0-100.
func FrequencyScore(gapDays float64) float64 {
	switch {
	case gapDays <= 1:
		return 100
	case gapDays <= 7:
		return 100 - (gapDays-1)/6*20
	case gapDays <= 30:
		return 80 - (gapDays-7)/23*40
	default:
		return math.Max(0, 40-(gapDays-30)/60*40)
	}
}
