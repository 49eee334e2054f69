package aggregator

import (
	"fmt"
	"strings"
	"time"

	"github.com/paperboy-hq/paperboy/pkg/providers"
)

// Profile fixes the orchestration inputs for one digest flavor: the topic
// list, the reddit feeds and filter policy, the guardian section, the date
// window and the result cap.
type Profile struct {
	Name     string
	Topics   []string
	Feeds    []string
	Filter   providers.FilterPolicy
	Section  string
	From     time.Time
	To       time.Time
	MaxItems int

	// ArtifactName is the default CSV file name for this digest.
	ArtifactName string
}

// archiveStart is the fixed beginning of the major-news archive window.
var archiveStart = time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)

// InvestmentProfile returns the deal-flow digest: six investment topics,
// two finance communities with keyword-filtered titles, capped at 20.
func InvestmentProfile() Profile {
	return Profile{
		Name: "investment",
		Topics: []string{
			"venture capital funding",
			"startup investment",
			"M&A deals",
			"IPO news",
			"private equity",
			"major investments",
		},
		Feeds:        []string{"investing", "stocks"},
		Filter:       providers.FilterKeywords,
		Section:      "business",
		MaxItems:     20,
		ArtifactName: "investment_news.csv",
	}
}

// ArchiveProfile returns the major-news archive digest: fifteen general
// topics over the window from the fixed 2018 start date to now, link posts
// only, capped at 50.
func ArchiveProfile(now time.Time) Profile {
	return Profile{
		Name: "major",
		Topics: []string{
			"world politics",
			"economy",
			"financial markets",
			"technology",
			"climate change",
			"energy crisis",
			"elections",
			"trade war",
			"pandemic",
			"artificial intelligence",
			"central banks",
			"geopolitics",
			"supply chain",
			"inflation",
			"cryptocurrency",
		},
		Feeds:        []string{"news", "worldnews", "business", "economics", "politics", "technology"},
		Filter:       providers.FilterLinksOnly,
		From:         archiveStart,
		To:           now,
		MaxItems:     50,
		ArtifactName: "major_news_2018_to_today.csv",
	}
}

// ProfileByName resolves a digest profile from its flag or config name.
func ProfileByName(name string, now time.Time) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "investment":
		return InvestmentProfile(), nil
	case "major", "archive":
		return ArchiveProfile(now), nil
	default:
		return Profile{}, fmt.Errorf("unknown digest profile %q", name)
	}
}
