package scoring

import "strings"

// domainAudience holds estimated monthly audience per pickup domain.
var domainAudience = map[string]float64{ //nolint:gochecknoglobals // immutable reference table
	"prnewswire.com":      5_000_000,
	"businesswire.com":    4_000_000,
	"globenewswire.com":   2_500_000,
	"prweb.com":           1_200_000,
	"accesswire.com":      800_000,
	"einpresswire.com":    600_000,
	"newswire.com":        500_000,
	"newsfilecorp.com":    300_000,
	"marketwatch.com":     15_000_000,
	"finance.yahoo.com":   90_000_000,
	"yahoo.com":           60_000_000,
	"morningstar.com":     8_000_000,
	"benzinga.com":        6_000_000,
	"apnews.com":          40_000_000,
	"reuters.com":         35_000_000,
	"bloomberg.com":       30_000_000,
	"fool.com":            10_000_000,
	"seekingalpha.com":    9_000_000,
	"streetinsider.com":   1_500_000,
	"investing.com":       20_000_000,
	"digitaljournal.com":  2_000_000,
	"theglobeandmail.com": 7_000_000,
}

// DomainAudience returns the estimated audience of a domain, or 0 when unknown.
// Only exact table entries match; subdomains are unknown unless listed.
func DomainAudience(domain string) float64 {
	return domainAudience[strings.ToLower(strings.TrimSpace(domain))]
}

// ExtractDomain reduces a URL or host string to its bare lowercase domain.
func ExtractDomain(source string) string {
	d := strings.ToLower(strings.TrimSpace(source))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	d = strings.TrimPrefix(d, "//")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndexByte(d, '@'); i >= 0 {
		d = d[i+1:]
	}
	if i := strings.LastIndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	return strings.TrimPrefix(d, "www.")
}
