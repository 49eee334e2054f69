package aggregator

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/paperboy-hq/paperboy/pkg/providers"
)

func TestInvestmentProfile(t *testing.T) {
	p := InvestmentProfile()

	assert.Equal(t, "investment", p.Name)
	assert.Equal(t, 6, len(p.Topics))
	assert.Equal(t, []string{"investing", "stocks"}, p.Feeds)
	assert.Equal(t, providers.FilterKeywords, p.Filter)
	assert.Equal(t, "business", p.Section)
	assert.Equal(t, 20, p.MaxItems)
	assert.Equal(t, true, p.From.IsZero())
	assert.Equal(t, "investment_news.csv", p.ArtifactName)
}

func TestArchiveProfile(t *testing.T) {
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	p := ArchiveProfile(now)

	assert.Equal(t, "major", p.Name)
	assert.Equal(t, 15, len(p.Topics))
	assert.Equal(t, 6, len(p.Feeds))
	assert.Equal(t, providers.FilterLinksOnly, p.Filter)
	assert.Equal(t, 50, p.MaxItems)
	assert.Equal(t, time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, now, p.To)
	assert.Equal(t, "major_news_2018_to_today.csv", p.ArtifactName)
}

func TestProfileByName(t *testing.T) {
	now := time.Now()

	p, err := ProfileByName("investment", now)
	assert.Equal(t, nil, err)
	assert.Equal(t, "investment", p.Name)

	p, err = ProfileByName("Major", now)
	assert.Equal(t, nil, err)
	assert.Equal(t, "major", p.Name)

	p, err = ProfileByName("archive", now)
	assert.Equal(t, nil, err)
	assert.Equal(t, "major", p.Name)

	_, err = ProfileByName("weather", now)
	assert.NotEqual(t, nil, err)
}
