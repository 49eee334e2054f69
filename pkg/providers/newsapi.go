package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/paperboy-hq/paperboy/internal/domain"
)

const (
	newsAPIEndpoint = "https://newsapi.org/v2/everything"
	newsAPIPageSize = "15"

	// newsAPITopicSuffix broadens every topic with the fixed deal-flow
	// terms the service tracks.
	newsAPITopicSuffix = " OR funding OR venture capital OR startup investment OR M&A OR IPO"
)

// ErrMissingAPIKey is returned when the keyed provider is queried without a
// credential.
var ErrMissingAPIKey = errors.New("newsapi: API key required")

// newsAPIFetcher implements Fetcher for the NewsAPI everything endpoint.
type newsAPIFetcher struct {
	client HTTPClient
	apiKey string
}

// NewNewsAPIFetcher builds the NewsAPI fetcher. The key is captured here and
// never changes afterwards; an empty key makes every Fetch fail with
// ErrMissingAPIKey.
func NewNewsAPIFetcher(client HTTPClient, apiKey string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsAPIFetcher{client: client, apiKey: strings.TrimSpace(apiKey)}
}

// ID returns the provider id for the NewsAPI fetcher.
func (f *newsAPIFetcher) ID() string {
	return string(domain.SourceNewsAPI)
}

// Fetch retrieves recent articles matching the broadened topic, sorted
// server-side by recency.
func (f *newsAPIFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	if f.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("q", q.Topic+newsAPITopicSuffix)
	params.Set("language", "en")
	params.Set("apiKey", f.apiKey)
	params.Set("pageSize", newsAPIPageSize)
	params.Set("sortBy", "publishedAt")
	if !q.From.IsZero() {
		params.Set("from", q.From.Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.Format("2006-01-02"))
	}

	resp, err := f.client.Get(ctx, newsAPIEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch newsapi: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", payload.Code, payload.Message)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		articles = append(articles, domain.Article{
			Source:       domain.SourceNewsAPI,
			SourceName:   item.Source.Name,
			Title:        item.Title,
			Description:  item.Description,
			URL:          item.URL,
			PublishedAt:  parseArticleTime(item.PublishedAt),
			PublishedRaw: item.PublishedAt,
		})
	}
	return articles, nil
}

// newsAPIResponse mirrors the subset of the everything payload in use.
// Missing fields decode to empty values and are tolerated.
type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
