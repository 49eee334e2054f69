package providers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/paperboy-hq/paperboy/pkg/httpclient"
)

func TestParseArticleTime(t *testing.T) {
	got := parseArticleTime("2024-03-01T09:30:00Z")
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 9, got.Hour())

	got = parseArticleTime("2024-03-01 09:30:00")
	assert.Equal(t, 30, got.Minute())

	got = parseArticleTime("2024-03-01")
	assert.Equal(t, 1, got.Day())

	assert.Equal(t, true, parseArticleTime("yesterday").IsZero())
	assert.Equal(t, true, parseArticleTime("").IsZero())
	assert.Equal(t, true, parseArticleTime("   ").IsZero())
}

func TestTitleMatchesAny(t *testing.T) {
	assert.Equal(t, true, titleMatchesAny("Startup raises $10M in seed round", investmentKeywords))
	assert.Equal(t, true, titleMatchesAny("BREAKING: IPO filing confirmed", investmentKeywords))
	assert.Equal(t, false, titleMatchesAny("Cat video goes viral", investmentKeywords))
	assert.Equal(t, false, titleMatchesAny("", investmentKeywords))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "", truncateRunes("abcdef", 0))

	// multibyte input must not be split mid-rune
	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", responseSnippet(nil))
	assert.Equal(t, "<empty>", responseSnippet([]byte("   ")))
	assert.Equal(t, "short body", responseSnippet([]byte("short body")))

	long := strings.Repeat("x", 600)
	got := responseSnippet([]byte(long))
	assert.Equal(t, 515, len(got))
	assert.Equal(t, true, strings.HasSuffix(got, "..."))
}

// stubResponse is a canned HTTP response for provider tests.
type stubResponse struct {
	body   []byte
	status int
}

func (r stubResponse) Body() []byte    { return r.body }
func (r stubResponse) StatusCode() int { return r.status }

// stubClient records the last request and replies with a fixed response.
type stubClient struct {
	lastURL     string
	lastHeaders map[string]string
	resp        stubResponse
	err         error
}

func (c *stubClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	c.lastURL = url
	c.lastHeaders = headers
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}

func (c *stubClient) Post(_ context.Context, url string, headers map[string]string, _ []byte) (httpclient.Response, error) {
	c.lastURL = url
	c.lastHeaders = headers
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}
