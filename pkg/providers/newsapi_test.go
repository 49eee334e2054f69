package providers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/paperboy-hq/paperboy/internal/domain"
)

func TestNewsAPIFetchWithoutKey(t *testing.T) {
	client := &stubClient{}
	f := NewNewsAPIFetcher(client, "  ")

	_, err := f.Fetch(context.Background(), Query{Topic: "economy"})

	assert.Equal(t, true, errors.Is(err, ErrMissingAPIKey))
	assert.Equal(t, true, strings.Contains(err.Error(), "API key required"))
	// no request must leave the process without a credential
	assert.Equal(t, "", client.lastURL)
}

func TestNewsAPIFetchRequestParams(t *testing.T) {
	client := &stubClient{resp: stubResponse{status: 200, body: []byte(`{"status":"ok","articles":[]}`)}}
	f := NewNewsAPIFetcher(client, "secret-key")

	from := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	_, err := f.Fetch(context.Background(), Query{Topic: "economy", From: from, To: to})
	assert.Equal(t, nil, err)

	parsed, err := url.Parse(client.lastURL)
	assert.Equal(t, nil, err)
	assert.Equal(t, "newsapi.org", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "economy"+newsAPITopicSuffix, q.Get("q"))
	assert.Equal(t, "en", q.Get("language"))
	assert.Equal(t, "secret-key", q.Get("apiKey"))
	assert.Equal(t, "15", q.Get("pageSize"))
	assert.Equal(t, "publishedAt", q.Get("sortBy"))
	assert.Equal(t, "2018-01-01", q.Get("from"))
	assert.Equal(t, "2024-06-30", q.Get("to"))
}

func TestNewsAPIFetchMapsArticles(t *testing.T) {
	body := `{
		"status": "ok",
		"articles": [
			{
				"source": {"id": "bloomberg", "name": "Bloomberg"},
				"title": "Fund raises record amount",
				"description": "A very large fund.",
				"url": "https://example.com/fund",
				"publishedAt": "2024-02-10T08:00:00Z"
			},
			{
				"source": {"name": "Elsewhere"},
				"title": "Undated piece",
				"url": "https://example.com/undated",
				"publishedAt": "sometime soon"
			}
		]
	}`
	client := &stubClient{resp: stubResponse{status: 200, body: []byte(body)}}
	f := NewNewsAPIFetcher(client, "secret-key")

	articles, err := f.Fetch(context.Background(), Query{Topic: "funds"})
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(articles))

	a := articles[0]
	assert.Equal(t, domain.SourceNewsAPI, a.Source)
	assert.Equal(t, "Bloomberg", a.SourceName)
	assert.Equal(t, "Fund raises record amount", a.Title)
	assert.Equal(t, "A very large fund.", a.Description)
	assert.Equal(t, "https://example.com/fund", a.URL)
	assert.Equal(t, 2024, a.PublishedAt.Year())
	assert.Equal(t, "2024-02-10T08:00:00Z", a.PublishedRaw)

	// unparseable dates keep the raw string and the zero timestamp
	assert.Equal(t, true, articles[1].PublishedAt.IsZero())
	assert.Equal(t, "sometime soon", articles[1].PublishedRaw)
}

func TestNewsAPIFetchStatusError(t *testing.T) {
	client := &stubClient{resp: stubResponse{status: 401, body: []byte(`{"status":"error"}`)}}
	f := NewNewsAPIFetcher(client, "bad-key")

	_, err := f.Fetch(context.Background(), Query{Topic: "economy"})
	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, strings.Contains(err.Error(), "status 401"))
}

func TestNewsAPIFetchAPIError(t *testing.T) {
	body := `{"status":"error","code":"rateLimited","message":"Too many requests"}`
	client := &stubClient{resp: stubResponse{status: 200, body: []byte(body)}}
	f := NewNewsAPIFetcher(client, "secret-key")

	_, err := f.Fetch(context.Background(), Query{Topic: "economy"})
	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, strings.Contains(err.Error(), "rateLimited"))
	assert.Equal(t, true, strings.Contains(err.Error(), "Too many requests"))
}
