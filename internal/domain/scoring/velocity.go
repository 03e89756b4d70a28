package scoring

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/types"
)

// VelocityGrouping selects which timestamp forms the calendar-date group key.
type VelocityGrouping int

const (
	// GroupByDetectionDate keys groups on the UTC date the publication was detected.
	GroupByDetectionDate VelocityGrouping = iota
	// GroupByPublicationDate keys groups on the UTC date of the original publication.
	GroupByPublicationDate
)

// ParseVelocityGrouping maps "detection" or "publication" to a grouping.
func ParseVelocityGrouping(s string) (VelocityGrouping, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "detection":
		return GroupByDetectionDate, true
	case "publication":
		return GroupByPublicationDate, true
	default:
		return GroupByDetectionDate, false
	}
}

const (
	// VelocityNoData is the score when no distribution delay could be measured.
	VelocityNoData = 0.0

	maxDelayHours          = 168.0
	channelFactorPerSource = 0.5
)

// VelocityBand maps total hours (average delay plus channel factor) to a score.
func VelocityBand(totalHours float64) float64 {
	switch {
	case totalHours <= 0:
		return VelocityNoData
	case totalHours <= 12:
		return 95
	case totalHours <= 24:
		return 90
	case totalHours <= 48:
		return 80
	case totalHours <= 72:
		return 60
	default:
		return 40
	}
}

// PublishingVelocity scores how quickly releases spread from the newsroom to other channels.
func (e *Engine) PublishingVelocity(ctx context.Context, accountID string) (res types.VelocityResult) {
	start := time.Now()
	defer func() { e.observe(calcVelocity, start, res.Score) }()

	pubs, err := e.source.VelocityPublications(ctx, accountID, e.now().Add(-ScoringWindow))
	if err != nil {
		e.degraded(ctx, calcVelocity, "velocity_publications", accountID, err)
		return types.VelocityResult{}
	}
	return computeVelocity(pubs, e.grouping)
}

func computeVelocity(pubs []model.Publication, grouping VelocityGrouping) types.VelocityResult {
	groups := make(map[string][]model.Publication)
	var considered int
	for _, p := range pubs {
		if p.PublishedAt == nil || p.DetectedAt == nil {
			continue
		}
		key := p.DetectedAt.UTC().Format(time.DateOnly)
		if grouping == GroupByPublicationDate {
			key = p.PublishedAt.UTC().Format(time.DateOnly)
		}
		groups[key] = append(groups[key], p)
		considered++
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := types.VelocityResult{Publications: considered}
	channels := make(map[string]struct{})
	var sum float64
	for _, k := range keys {
		group := groups[k]
		sortOriginalFirst(group)
		original := group[0]
		for _, cp := range group[1:] {
			delay := cp.PublishedAt.Sub(*original.PublishedAt).Hours()
			if delay <= 0 || delay >= maxDelayHours {
				continue
			}
			sum += delay
			channels[normalizeChannelType(cp.ChannelType)] = struct{}{}
			res.Delays = append(res.Delays, types.ChannelDelay{
				PublicationID: cp.ID,
				ChannelType:   cp.ChannelType,
				DelayHours:    delay,
			})
		}
	}

	if len(res.Delays) == 0 {
		return res
	}
	res.AverageDelayHours = sum / float64(len(res.Delays))
	res.ChannelFactorHours = float64(len(channels)) * channelFactorPerSource
	res.TotalHours = res.AverageDelayHours + res.ChannelFactorHours
	res.Score = VelocityBand(res.TotalHours)
	return res
}

// sortOriginalFirst orders newsroom channels first, then by publication time.
func sortOriginalFirst(group []model.Publication) {
	sort.SliceStable(group, func(i, j int) bool {
		ni, nj := IsNewsroomChannel(group[i].ChannelType), IsNewsroomChannel(group[j].ChannelType)
		if ni != nj {
			return ni
		}
		ti, tj := *group[i].PublishedAt, *group[j].PublishedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return group[i].ID < group[j].ID
	})
}

// IsNewsroomChannel reports whether a channel type denotes the account's media or press room.
func IsNewsroomChannel(channelType string) bool {
	n := normalizeChannelType(channelType)
	for _, marker := range []string{"media room", "press room", "mediaroom", "pressroom"} {
		if strings.Contains(n, marker) {
			return true
		}
	}
	return false
}

func normalizeChannelType(channelType string) string {
	n := strings.ToLower(channelType)
	n = strings.NewReplacer("_", " ", "-", " ").Replace(n)
	return strings.Join(strings.Fields(n), " ")
}
