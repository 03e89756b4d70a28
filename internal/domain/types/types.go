// Package types contains the score results returned across the application.
package types

import "time"

// Normalization modes reported by ReachResult.
const (
	NormalizationPeer        = "peer"
	NormalizationPeerUniform = "peer_uniform"
	NormalizationLinear      = "linear"
)

// ChannelDelay is one retained distribution delay.
type ChannelDelay struct {
	PublicationID string  `json:"publication_id"`
	ChannelType   string  `json:"channel_type"`
	DelayHours    float64 `json:"delay_hours"`
}

// VelocityResult is the Publishing Velocity sub-score with its breakdown.
type VelocityResult struct {
	Score              float64        `json:"score"`
	AverageDelayHours  float64        `json:"average_delay_hours"`
	ChannelFactorHours float64        `json:"channel_factor_hours"`
	TotalHours         float64        `json:"total_hours"`
	Delays             []ChannelDelay `json:"delays,omitempty"`
	Publications       int            `json:"publications"`
}

// DomainReach is the contribution of one pickup domain to earned reach.
type DomainReach struct {
	Domain    string  `json:"domain"`
	Mentions  int     `json:"mentions"`
	Audience  float64 `json:"audience"`
	Weighted  float64 `json:"weighted"`
	Qualified bool    `json:"qualified"`
}

// ReachResult is the Distribution Reach sub-score with its breakdown.
type ReachResult struct {
	Score            float64       `json:"score"`
	OwnedReach       float64       `json:"owned_reach"`
	EarnedReach      float64       `json:"earned_reach"`
	RawEarnedReach   float64       `json:"raw_earned_reach"`
	TotalReach       float64       `json:"total_reach"`
	OwnedScore       float64       `json:"owned_score"`
	EarnedScore      float64       `json:"earned_score"`
	QualifiedDomains int           `json:"qualified_domains"`
	TotalPickups     int           `json:"total_pickups"`
	PeerCount        int           `json:"peer_count"`
	PeerMin          float64       `json:"peer_min"`
	PeerMax          float64       `json:"peer_max"`
	Normalization    string        `json:"normalization"`
	Domains          []DomainReach `json:"domains,omitempty"`
}

// CoverageResult is the Coverage Quality sub-score with its breakdown.
type CoverageResult struct {
	Score                float64 `json:"score"`
	QualifiedPickups     int     `json:"qualified_pickups"`
	ExcludedLowAuthority int     `json:"excluded_low_authority"`
	AvgDomainAuthority   float64 `json:"avg_domain_authority"`
	AvgIndustryMatch     float64 `json:"avg_industry_match"`
	AvgSentiment         float64 `json:"avg_sentiment"`
	AvgEngagement        float64 `json:"avg_engagement"`
	Baseline             bool    `json:"baseline"`
}

// FindabilityResult is the Organic Findability sub-score with its breakdown.
type FindabilityResult struct {
	Score              float64 `json:"score"`
	SearchRankScore    float64 `json:"search_rank_score"`
	TopicCoverageScore float64 `json:"topic_coverage_score"`
	FrequencyScore     float64 `json:"frequency_score"`
	AvgRankPosition    float64 `json:"avg_rank_position"`
	RankedResults      int     `json:"ranked_results"`
	UniqueKeywords     int     `json:"unique_keywords"`
	AvgGapDays         float64 `json:"avg_gap_days"`
	RecentPublications int     `json:"recent_publications"`
}

// HealthReport bundles the four sub-scores of one account.
// Overall is only set when a composer is configured.
type HealthReport struct {
	AccountID   string            `json:"account_id"`
	ComputedAt  time.Time         `json:"computed_at"`
	Velocity    VelocityResult    `json:"publishing_velocity"`
	Reach       ReachResult       `json:"distribution_reach"`
	Coverage    CoverageResult    `json:"coverage_quality"`
	Findability FindabilityResult `json:"organic_findability"`
	Overall     *float64          `json:"overall,omitempty"`
}
