package seed

import "time"

// Dataset size defaults.
const (
	DefaultAccounts                = 10
	DefaultPublicationsPerAccount  = 12
	DefaultRelationshipsPerRelease = 4
)

// Timing ranges for generated records.
const (
	releaseSpread    = 120 * 24 * time.Hour // releases fall inside this window before Now
	maxDetectLag     = 6 * time.Hour
	maxSyndicateLag  = 72 * time.Hour
	maxPickupLag     = 48 * time.Hour
	syndicationOdds  = 0.7
	enrichmentOdds   = 0.8
	rankedOdds       = 0.5
	maxSearchRank    = 60
	maxFollowers     = 250_000
	maxNewsroomVisit = 40_000
)

var industries = []string{"energy", "fintech", "healthcare", "retail"} //nolint:gochecknoglobals // fixtures

var socialChannels = []string{"linkedin", "twitter", "facebook", "newsletter"} //nolint:gochecknoglobals // fixtures

var pickupDomains = []string{ //nolint:gochecknoglobals // fixtures
	"https://www.prnewswire.com/news-releases/",
	"https://www.businesswire.com/news/home/",
	"https://www.globenewswire.com/news-release/",
	"https://finance.yahoo.com/news/",
	"https://www.marketwatch.com/press-release/",
	"https://apnews.com/press-release/",
	"https://local-gazette.example/story/",
}

var headlineWords = []string{ //nolint:gochecknoglobals // fixtures
	"launches", "expands", "partnership", "quarterly", "results", "platform", "sustainability",
	"acquisition", "customers", "storage", "solar", "payments", "clinical", "retailers",
	"innovation", "award", "hiring", "funding", "security", "analytics",
}
