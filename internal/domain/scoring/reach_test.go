package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/scoring"
	"github.com/okian/prhealth/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistributionReach(t *testing.T) {
	ctx := context.Background()

	Convey("Given two prnewswire pickups and no owned audience", t, func() {
		src := &fakeSource{rels: []model.Relationship{
			pickup("acc", "https://www.prnewswire.com/news-releases/a.html"),
			pickup("acc", "prnewswire.com"),
		}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then earned reach is the audience times the flat relevance", func() {
			So(res.OwnedReach, ShouldEqual, 0)
			So(res.EarnedReach, ShouldEqual, 2_500_000)
			So(res.RawEarnedReach, ShouldEqual, 2_500_000)
			So(res.TotalReach, ShouldEqual, 2_500_000)
			So(res.QualifiedDomains, ShouldEqual, 1)
			So(res.TotalPickups, ShouldEqual, 2)
			So(res.Normalization, ShouldEqual, types.NormalizationLinear)
			So(res.Score, ShouldEqual, 100)
			So(res.Domains, ShouldHaveLength, 1)
			So(res.Domains[0].Domain, ShouldEqual, "prnewswire.com")
		})
	})

	Convey("Given domains mentioned only once", t, func() {
		src := &fakeSource{rels: []model.Relationship{
			pickup("acc", "prnewswire.com"),
			pickup("acc", "businesswire.com"),
		}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then none qualifies and the earned baseline applies", func() {
			So(res.QualifiedDomains, ShouldEqual, 0)
			So(res.RawEarnedReach, ShouldEqual, 0)
			So(res.EarnedReach, ShouldEqual, scoring.EarnedReachBaseline)
			So(res.Domains, ShouldHaveLength, 2)
			So(res.Domains[0].Qualified, ShouldBeFalse)
		})
	})

	Convey("Given qualified domains with an unknown audience", t, func() {
		src := &fakeSource{rels: []model.Relationship{
			pickup("acc", "smallblog.example"),
			pickup("acc", "SMALLBLOG.example/post"),
		}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then raw earned reach is below the floor and the baseline applies", func() {
			So(res.QualifiedDomains, ShouldEqual, 1)
			So(res.RawEarnedReach, ShouldEqual, 0)
			So(res.EarnedReach, ShouldEqual, 20_000)
		})
	})

	Convey("Given qualified pickups on an unlisted subdomain", t, func() {
		src := &fakeSource{rels: []model.Relationship{
			pickup("acc", "https://news.prnewswire.com/a.html"),
			pickup("acc", "https://news.prnewswire.com/b.html"),
		}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then the subdomain has no audience and the baseline applies", func() {
			So(res.QualifiedDomains, ShouldEqual, 1)
			So(res.Domains[0].Domain, ShouldEqual, "news.prnewswire.com")
			So(res.RawEarnedReach, ShouldEqual, 0)
			So(res.EarnedReach, ShouldEqual, scoring.EarnedReachBaseline)
		})
	})

	Convey("Given non-qualifying relationship rows", t, func() {
		fuzzy := pickup("acc", "prnewswire.com")
		fuzzy.MatchStatus = "fuzzy"
		noSource := pickup("acc", "prnewswire.com")
		noSource.Source = nil
		src := &fakeSource{rels: []model.Relationship{fuzzy, noSource, pickup("acc", "prnewswire.com")}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then they are not counted", func() {
			So(res.TotalPickups, ShouldEqual, 1)
			So(res.EarnedReach, ShouldEqual, scoring.EarnedReachBaseline)
		})
	})

	Convey("Given an account with a declared audience", t, func() {
		src := &fakeSource{accounts: map[string]model.Account{
			"acc": {ID: "acc", DeclaredAudience: ptr(int64(300_000)), Followers: map[string]int64{"x": 9}},
		}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then owned reach is the declared audience", func() {
			So(res.OwnedReach, ShouldEqual, 300_000)
			So(res.TotalReach, ShouldEqual, 320_000)
			So(res.OwnedScore, ShouldEqual, 30)
			So(res.Score, ShouldEqual, 32)
		})
	})

	Convey("Given an account without a declared audience", t, func() {
		src := &fakeSource{accounts: map[string]model.Account{
			"acc": {ID: "acc", Followers: map[string]int64{"linkedin": 10_000, "x": 5_000}, NewsroomTraffic: 5_000},
		}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then owned reach is followers plus newsroom traffic", func() {
			So(res.OwnedReach, ShouldEqual, 20_000)
		})
	})

	Convey("Given an account with industry peers", t, func() {
		src := &fakeSource{
			accounts: map[string]model.Account{"acc": {ID: "acc", Industry: "biotech", NewsroomTraffic: 80_000}},
			peers:    []model.PeerReach{{AccountID: "p1", Reach: 0}, {AccountID: "p2", Reach: 200_000}},
		}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then the score is min-max normalized against the peers", func() {
			So(res.TotalReach, ShouldEqual, 100_000)
			So(res.Normalization, ShouldEqual, types.NormalizationPeer)
			So(res.PeerCount, ShouldEqual, 2)
			So(res.PeerMin, ShouldEqual, 0)
			So(res.PeerMax, ShouldEqual, 200_000)
			So(res.Score, ShouldEqual, 50)
		})

		Convey("When the account exceeds every peer", func() {
			src.peers = []model.PeerReach{{AccountID: "p1", Reach: 1_000}, {AccountID: "p2", Reach: 5_000}}
			res := newEngine(t, src).DistributionReach(ctx, "acc")
			So(res.Score, ShouldEqual, 100)
		})

		Convey("When every peer has the same reach", func() {
			src.peers = []model.PeerReach{{AccountID: "p1", Reach: 100_000}, {AccountID: "p2", Reach: 100_000}}
			res := newEngine(t, src).DistributionReach(ctx, "acc")
			So(res.Normalization, ShouldEqual, types.NormalizationPeerUniform)
			So(res.Score, ShouldEqual, 100)

			src.peers = []model.PeerReach{{AccountID: "p1", Reach: 500_000}}
			res = newEngine(t, src).DistributionReach(ctx, "acc")
			So(res.Score, ShouldEqual, 50)
		})

		Convey("When the peer query fails", func() {
			src.fail = map[string]bool{"peers": true}
			res := newEngine(t, src).DistributionReach(ctx, "acc")
			So(res.Normalization, ShouldEqual, types.NormalizationLinear)
			So(res.Score, ShouldEqual, 10)
		})
	})

	Convey("Given an account without an industry", t, func() {
		src := &fakeSource{accounts: map[string]model.Account{"acc": {ID: "acc"}}}
		_ = newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then peers are never queried", func() {
			So(src.peerCalls, ShouldEqual, 0)
		})
	})

	Convey("Given a custom relevance function", t, func() {
		src := &fakeSource{
			accounts: map[string]model.Account{"acc": {ID: "acc", Industry: "finance"}},
			rels:     []model.Relationship{pickup("acc", "prnewswire.com"), pickup("acc", "prnewswire.com")},
		}
		relevance := func(industry, domain string) float64 {
			if industry == "finance" && domain == "prnewswire.com" {
				return 0.9
			}
			return 0.1
		}
		res := newEngine(t, src, scoring.WithRelevance(relevance)).DistributionReach(ctx, "acc")

		So(res.EarnedReach, ShouldAlmostEqual, 4_500_000, 1e-6)
	})

	Convey("Given every read failing", t, func() {
		src := &fakeSource{fail: map[string]bool{"account": true, "pickups": true}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		Convey("Then only the earned baseline remains", func() {
			So(res.OwnedReach, ShouldEqual, 0)
			So(res.EarnedReach, ShouldEqual, scoring.EarnedReachBaseline)
			So(res.Score, ShouldEqual, 2)
		})
	})

	Convey("Given pickups older than the window", t, func() {
		old := pickup("acc", "prnewswire.com")
		old.PublishedAt = at(now.Add(-31 * 24 * time.Hour))
		src := &fakeSource{rels: []model.Relationship{old, old}}
		res := newEngine(t, src).DistributionReach(ctx, "acc")

		So(res.TotalPickups, ShouldEqual, 0)
	})
}

func TestExtractDomain(t *testing.T) {
	Convey("Given source strings", t, func() {
		cases := map[string]string{
			"https://www.PRNewswire.com/news/x.html": "prnewswire.com",
			"http://prnewswire.com:8080/?q=1":        "prnewswire.com",
			"www.businesswire.com":                   "businesswire.com",
			"finance.yahoo.com/quote":                "finance.yahoo.com",
			"  GlobeNewswire.com  ":                  "globenewswire.com",
			"//cdn.example.org#frag":                 "cdn.example.org",
			"":                                       "",
		}
		for in, want := range cases {
			So(scoring.ExtractDomain(in), ShouldEqual, want)
		}
	})
}

func TestDomainAudience(t *testing.T) {
	Convey("Given the audience table", t, func() {
		So(scoring.DomainAudience("prnewswire.com"), ShouldEqual, 5_000_000)
		So(scoring.DomainAudience("PRNewswire.com"), ShouldEqual, 5_000_000)
		So(scoring.DomainAudience("news.prnewswire.com"), ShouldEqual, 0)
		So(scoring.DomainAudience("finance.yahoo.com"), ShouldEqual, 90_000_000)
		So(scoring.DomainAudience("unknown.example"), ShouldEqual, 0)
		So(scoring.DomainAudience("com"), ShouldEqual, 0)
	})
}
