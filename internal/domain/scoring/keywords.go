package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/prhealth/internal/domain/model"
)

const (
	minKeywordLength = 4
	maxBodyChars     = 1000
)

var stopWords = map[string]struct{}{ //nolint:gochecknoglobals // immutable reference table
	"about": {}, "above": {}, "after": {}, "again": {}, "against": {}, "also": {}, "among": {},
	"been": {}, "before": {}, "being": {}, "below": {}, "between": {}, "both": {}, "came": {},
	"come": {}, "could": {}, "does": {}, "doing": {}, "down": {}, "during": {}, "each": {},
	"even": {}, "every": {}, "from": {}, "further": {}, "have": {}, "having": {}, "here": {},
	"hers": {}, "herself": {}, "himself": {}, "into": {}, "itself": {}, "just": {}, "like": {},
	"made": {}, "make": {}, "many": {}, "more": {}, "most": {}, "much": {}, "must": {},
	"myself": {}, "never": {}, "once": {}, "only": {}, "other": {}, "ours": {}, "ourselves": {},
	"over": {}, "said": {}, "same": {}, "should": {}, "since": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "their": {}, "theirs": {}, "them": {}, "themselves": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "under": {},
	"until": {}, "upon": {}, "very": {}, "want": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "will": {}, "with": {}, "within": {}, "without": {},
	"would": {}, "your": {}, "yours": {}, "yourself": {}, "yourselves": {}, "today": {},
	"announced": {}, "announces": {}, "company": {}, "release": {}, "press": {}, "news": {},
	"year": {}, "years": {}, "including": {}, "based": {}, "well": {}, "2024": {}, "2025": {},
}

// IsStopWord reports whether w is ignored by keyword extraction.
func IsStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

// PublicationKeywords adds the keywords of a publication to set.
// Body text is limited to its first 1000 characters after markup is removed.
// Each field is stripped once so decoded entities stay text.
func PublicationKeywords(p model.Publication, set map[string]struct{}) {
	fields := []string{
		StripMarkup(p.Title),
		truncateRunes(StripMarkup(p.Body), maxBodyChars),
		StripMarkup(p.Summary),
	}
	for _, text := range fields {
		for _, w := range Tokenize(text) {
			set[w] = struct{}{}
		}
	}
}

// Tokenize lowercases text, splits it on whitespace and drops every rune that is
// not a letter or digit, so "Widget-Pro" becomes "widgetpro". Tokens shorter than
// four characters and stop words are skipped.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		if utf8.RuneCountInString(f) < minKeywordLength || IsStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// StripMarkup returns the text content of an HTML fragment. Plain text passes through.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	// element boundaries separate words
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml(" ").AppendHtml(" ")
	})
	return doc.Text()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
