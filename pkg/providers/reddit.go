package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/paperboy-hq/paperboy/internal/domain"
)

const (
	redditHotEndpoint = "https://www.reddit.com/r/%s/hot.json?limit=%d"
	redditPageLimit   = 15
	redditUserAgent   = "NewsFetcher/1.0"

	// redditSelftextMax caps how much of a self post's body is kept as
	// the article description.
	redditSelftextMax = 200
)

// redditFetcher implements Fetcher for reddit hot listings. One fetcher
// serves every community; the feed name and the filter policy travel on the
// per-call Query.
type redditFetcher struct {
	client HTTPClient
}

// NewRedditFetcher builds the reddit fetcher.
func NewRedditFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &redditFetcher{client: client}
}

// ID returns the provider id for the reddit fetcher.
func (f *redditFetcher) ID() string {
	return string(domain.SourceReddit)
}

// Fetch retrieves the hot page of the queried feed, converts epoch creation
// times into canonical timestamps and applies the query's filter policy.
func (f *redditFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	feed := strings.TrimSpace(q.Feed)
	if feed == "" {
		return nil, fmt.Errorf("reddit query has no feed name")
	}

	endpoint := fmt.Sprintf(redditHotEndpoint, feed, redditPageLimit)
	headers := map[string]string{"User-Agent": redditUserAgent}

	resp, err := f.client.Get(ctx, endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch reddit r/%s: %w", feed, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("reddit r/%s returned status %d body: %s", feed, resp.StatusCode(), responseSnippet(body))
	}

	var payload redditListing
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode reddit r/%s listing: %w", feed, err)
	}

	articles := make([]domain.Article, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		post := child.Data
		if !keepPost(post, q.Filter) {
			continue
		}

		var published time.Time
		var publishedRaw string
		if post.CreatedUTC > 0 {
			published = time.Unix(int64(post.CreatedUTC), 0).UTC()
			publishedRaw = published.Format(time.RFC3339)
		}

		articles = append(articles, domain.Article{
			Source:       domain.SourceReddit,
			SourceName:   "Reddit r/" + feed,
			Title:        post.Title,
			Description:  truncateRunes(post.Selftext, redditSelftextMax),
			URL:          post.URL,
			Score:        post.Score,
			PublishedAt:  published,
			PublishedRaw: publishedRaw,
		})
	}
	return articles, nil
}

// keepPost applies the filter policy to one listing entry.
func keepPost(post redditPost, policy FilterPolicy) bool {
	switch policy {
	case FilterKeywords:
		return titleMatchesAny(post.Title, investmentKeywords)
	case FilterLinksOnly:
		return !post.IsSelf
	default:
		return true
	}
}

// redditListing mirrors the subset of the hot listing payload in use.
type redditListing struct {
	Data redditListingData `json:"data"`
}

type redditListingData struct {
	Children []redditChild `json:"children"`
}

type redditChild struct {
	Data redditPost `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Subreddit  string  `json:"subreddit"`
	Score      int     `json:"score"`
	IsSelf     bool    `json:"is_self"`
	CreatedUTC float64 `json:"created_utc"`
}
