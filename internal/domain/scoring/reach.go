package scoring

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/types"
)

const (
	// EarnedReachBaseline is the floor applied to earned reach.
	EarnedReachBaseline = 20_000.0

	// DefaultRelevance is the flat relevance factor applied to every pickup domain.
	DefaultRelevance = 0.5

	linearReachCeiling = 1_000_000.0
	minDomainMentions  = 2
	uniformPeerBelow   = 50.0
)

// RelevanceFunc weights a domain's audience for an account's industry.
type RelevanceFunc func(industry, domain string) float64

// FlatRelevance ignores industry and domain and returns DefaultRelevance.
func FlatRelevance(string, string) float64 { return DefaultRelevance }

// DistributionReach scores owned plus earned audience relative to industry peers.
func (e *Engine) DistributionReach(ctx context.Context, accountID string) (res types.ReachResult) {
	start := time.Now()
	defer func() { e.observe(calcReach, start, res.Score) }()

	account, err := e.source.Account(ctx, accountID)
	if err != nil {
		e.degraded(ctx, calcReach, "account", accountID, err)
		account = nil
	}
	res.OwnedReach = ownedReach(account)

	var industry string
	if account != nil {
		industry = account.Industry
	}

	pickups, err := e.source.Pickups(ctx, accountID, e.now().Add(-ScoringWindow), false)
	if err != nil {
		e.degraded(ctx, calcReach, "pickups", accountID, err)
		pickups = nil
	}
	e.earnedReach(&res, industry, pickups)
	res.TotalReach = res.OwnedReach + res.EarnedReach
	res.OwnedScore = linearReachScore(res.OwnedReach)
	res.EarnedScore = linearReachScore(res.EarnedReach)

	var peers []model.PeerReach
	if industry != "" {
		peers, err = e.source.IndustryPeers(ctx, industry, accountID)
		if err != nil {
			e.degraded(ctx, calcReach, "industry_peers", accountID, err)
			peers = nil
		}
	}
	normalizeReach(&res, peers)
	return res
}

func ownedReach(a *model.Account) float64 {
	switch {
	case a == nil:
		return 0
	case a.HasDeclaredAudience():
		return float64(*a.DeclaredAudience)
	default:
		return float64(a.FollowerTotal() + a.NewsroomTraffic)
	}
}

func (e *Engine) earnedReach(res *types.ReachResult, industry string, pickups []model.Relationship) {
	mentions := make(map[string]int)
	for _, r := range pickups {
		if !r.IsNewswirePickup() {
			continue
		}
		d := ExtractDomain(*r.Source)
		if d == "" {
			continue
		}
		mentions[d]++
		res.TotalPickups++
	}

	domains := make([]string, 0, len(mentions))
	for d := range mentions {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, d := range domains {
		dr := types.DomainReach{
			Domain:    d,
			Mentions:  mentions[d],
			Audience:  DomainAudience(d),
			Qualified: mentions[d] >= minDomainMentions,
		}
		if dr.Qualified {
			dr.Weighted = dr.Audience * e.relevance(industry, d)
			res.RawEarnedReach += dr.Weighted
			res.QualifiedDomains++
		}
		res.Domains = append(res.Domains, dr)
	}

	res.EarnedReach = res.RawEarnedReach
	if res.QualifiedDomains == 0 || res.RawEarnedReach < EarnedReachBaseline {
		res.EarnedReach = EarnedReachBaseline
	}
}

func normalizeReach(res *types.ReachResult, peers []model.PeerReach) {
	if len(peers) == 0 {
		res.Normalization = types.NormalizationLinear
		res.Score = linearReachScore(res.TotalReach)
		return
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range peers {
		lo = math.Min(lo, p.Reach)
		hi = math.Max(hi, p.Reach)
	}
	res.PeerCount = len(peers)
	res.PeerMin, res.PeerMax = lo, hi

	if hi == lo {
		res.Normalization = types.NormalizationPeerUniform
		res.Score = uniformPeerBelow
		if res.TotalReach >= hi {
			res.Score = maxScore
		}
		return
	}
	res.Normalization = types.NormalizationPeer
	res.Score = clamp((res.TotalReach-lo)/(hi-lo)*maxScore, 0, maxScore)
}

func linearReachScore(reach float64) float64 {
	return math.Min(reach*maxScore/linearReachCeiling, maxScore)
}
