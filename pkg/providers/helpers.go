package providers

import (
	"strings"
	"time"
)

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// articleTimeFormats are the provider date layouts accepted at ingestion,
// most specific first.
var articleTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseArticleTime converts a provider date string into the canonical
// timestamp. Unknown layouts yield the zero time, which orders least-recent.
func parseArticleTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range articleTimeFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	return time.Time{}
}

// investmentKeywords is the title allowlist applied under FilterKeywords.
var investmentKeywords = []string{
	"investment", "funding", "venture", "capital", "startup",
	"ipo", "acquisition", "merger", "fund", "raise",
	"stock", "market", "crypto", "bitcoin", "earnings",
	"valuation", "billion", "equity", "dividend",
}

func titleMatchesAny(title string, keywords []string) bool {
	title = strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// truncateRunes caps a string at n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
