package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paperboy-hq/paperboy/internal/domain"
	"github.com/paperboy-hq/paperboy/pkg/httpclient"
)

// HTTPClient is the transport used by provider fetchers.
type HTTPClient = httpclient.Client

// FilterPolicy selects how the reddit fetcher screens listing entries. The
// caller picks the policy per query.
type FilterPolicy string

const (
	// FilterNone keeps every entry.
	FilterNone FilterPolicy = "none"
	// FilterKeywords keeps entries whose lowercased title contains at
	// least one investment keyword.
	FilterKeywords FilterPolicy = "keywords"
	// FilterLinksOnly drops self-text-only posts.
	FilterLinksOnly FilterPolicy = "links-only"
)

// Query describes one fetch against a provider. Fields a provider does not
// understand are ignored by it: Feed and Filter drive the reddit fetcher,
// Section the guardian one, From/To the two date-capable APIs.
type Query struct {
	Topic   string
	Feed    string
	Filter  FilterPolicy
	Section string
	From    time.Time
	To      time.Time
}

// Fetcher retrieves articles from one upstream provider.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, q Query) ([]domain.Article, error)
}

// FetcherRegistry resolves fetchers by provider id.
type FetcherRegistry interface {
	FetcherFor(id string) (Fetcher, error)
}

type fetcherRegistry struct {
	fetchers map[string]Fetcher
	mu       sync.RWMutex
}

// NewFetcherRegistry builds a registry for the provided fetcher implementations.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{
		fetchers: make(map[string]Fetcher, len(fetchers)),
	}

	for _, f := range fetchers {
		if f == nil {
			continue
		}
		reg.fetchers[strings.ToLower(strings.TrimSpace(f.ID()))] = f
	}

	return reg
}

// FetcherFor selects the fetcher registered under the given provider id.
func (r *fetcherRegistry) FetcherFor(id string) (Fetcher, error) {
	if id == "" {
		return nil, fmt.Errorf("provider id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(id)
	if f, ok := r.fetchers[key]; ok {
		return f, nil
	}

	return nil, fmt.Errorf("no fetcher registered for provider %q", id)
}

// DefaultHTTPClient returns a tuned http.Client for provider fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// DefaultFetcherRegistry wires up the known provider fetchers. The api key
// is captured by the fetchers that use it and is immutable afterwards.
func DefaultFetcherRegistry(client HTTPClient, apiKey string) FetcherRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}

	return NewFetcherRegistry(
		NewGuardianFetcher(client, apiKey),
		NewRedditFetcher(client),
		NewNewsAPIFetcher(client, apiKey),
	)
}
