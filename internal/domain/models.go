package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by the fetch pipeline and exporters.

// Source identifies the upstream a record came from.
type Source string

const (
	SourceNewsAPI  Source = "newsapi"
	SourceGuardian Source = "guardian"
	SourceReddit   Source = "reddit"
)

// Article is one normalized news record. PublishedAt holds the canonical
// timestamp parsed at ingestion; the zero value means the upstream date was
// missing or unparseable, and such records order as least-recent.
// PublishedRaw keeps the provider's original date string for display.
type Article struct {
	Source       Source
	SourceName   string
	Title        string
	Description  string
	URL          string
	Score        int
	PublishedAt  time.Time
	PublishedRaw string
}

// TitleKey returns the identity key for duplicate detection. Two articles
// are the same iff their lowercased titles are byte-equal.
func (a Article) TitleKey() string {
	return strings.ToLower(a.Title)
}
