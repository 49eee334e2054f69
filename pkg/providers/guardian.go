package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/paperboy-hq/paperboy/internal/domain"
)

const (
	guardianEndpoint = "https://content.guardianapis.com/search"
	guardianPageSize = "15"

	// guardianTestKey is the public rate-limited token the Guardian API
	// accepts when no real key is configured.
	guardianTestKey = "test"

	guardianTopicSuffix = " funding venture capital startup"
	guardianShowFields  = "headline,trailText,webUrl,publication"
)

// guardianFetcher implements Fetcher for the Guardian content search API.
type guardianFetcher struct {
	client HTTPClient
	apiKey string
}

// NewGuardianFetcher builds the Guardian fetcher. An empty key falls back to
// the public test token instead of failing.
func NewGuardianFetcher(client HTTPClient, apiKey string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &guardianFetcher{client: client, apiKey: strings.TrimSpace(apiKey)}
}

// ID returns the provider id for the Guardian fetcher.
func (f *guardianFetcher) ID() string {
	return string(domain.SourceGuardian)
}

// Fetch retrieves articles for the broadened topic, flattening the nested
// field sub-objects into the common record shape.
func (f *guardianFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	key := f.apiKey
	if key == "" {
		key = guardianTestKey
	}

	params := url.Values{}
	params.Set("q", q.Topic+guardianTopicSuffix)
	params.Set("show-fields", guardianShowFields)
	params.Set("api-key", key)
	params.Set("page-size", guardianPageSize)
	if q.Section != "" {
		params.Set("section", q.Section)
	}
	if !q.From.IsZero() {
		params.Set("from-date", q.From.Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		params.Set("to-date", q.To.Format("2006-01-02"))
	}

	resp, err := f.client.Get(ctx, guardianEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch guardian: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("guardian returned status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	var payload guardianResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode guardian response: %w", err)
	}
	if payload.Response.Status != "ok" {
		return nil, fmt.Errorf("guardian error: status %q", payload.Response.Status)
	}

	articles := make([]domain.Article, 0, len(payload.Response.Results))
	for _, item := range payload.Response.Results {
		title := item.Fields.Headline
		if title == "" {
			title = item.WebTitle
		}
		name := item.Fields.Publication
		if name == "" {
			name = "The Guardian"
		}

		articles = append(articles, domain.Article{
			Source:       domain.SourceGuardian,
			SourceName:   name,
			Title:        title,
			Description:  item.Fields.TrailText,
			URL:          item.WebURL,
			PublishedAt:  parseArticleTime(item.WebPublicationDate),
			PublishedRaw: item.WebPublicationDate,
		})
	}
	return articles, nil
}

// guardianResponse mirrors the subset of the content search payload in use.
type guardianResponse struct {
	Response guardianBody `json:"response"`
}

type guardianBody struct {
	Status  string           `json:"status"`
	Results []guardianResult `json:"results"`
}

type guardianResult struct {
	WebTitle           string         `json:"webTitle"`
	WebURL             string         `json:"webUrl"`
	WebPublicationDate string         `json:"webPublicationDate"`
	SectionName        string         `json:"sectionName"`
	Fields             guardianFields `json:"fields"`
}

type guardianFields struct {
	Headline    string `json:"headline"`
	TrailText   string `json:"trailText"`
	Publication string `json:"publication"`
}
