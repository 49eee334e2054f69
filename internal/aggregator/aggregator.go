package aggregator

import (
	"context"
	"sort"
	"strings"

	"github.com/paperboy-hq/paperboy/internal/domain"
	"github.com/paperboy-hq/paperboy/internal/logger"
	"github.com/paperboy-hq/paperboy/pkg/providers"
)

// Config carries the aggregator's immutable construction inputs.
type Config struct {
	// APIKey unlocks the keyed provider; when empty that provider is
	// skipped during fan-out.
	APIKey string
	Client providers.HTTPClient
	// Registry overrides the default provider wiring, mainly for tests.
	Registry providers.FetcherRegistry
	Logger   logger.Logger
}

// Aggregator fans a topic out to the configured providers and folds the
// results into one ranked article list.
type Aggregator struct {
	reg   providers.FetcherRegistry
	keyed bool
	log   logger.Logger
}

// New builds an Aggregator. A nil registry gets the default provider
// wiring; a nil logger is silenced.
func New(cfg Config) *Aggregator {
	reg := cfg.Registry
	if reg == nil {
		reg = providers.DefaultFetcherRegistry(cfg.Client, cfg.APIKey)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NopLogger{}
	}

	return &Aggregator{
		reg:   reg,
		keyed: strings.TrimSpace(cfg.APIKey) != "",
		log:   log,
	}
}

// Failure records one provider call that produced no articles.
type Failure struct {
	Source string
	Err    error
}

// Result is the outcome of an aggregation. Collected counts the records
// accumulated before deduplication.
type Result struct {
	Articles  []domain.Article
	Failures  []Failure
	Collected int
}

// sourceCall names one provider invocation of the fan-out.
type sourceCall struct {
	id   string
	feed string
}

func (c sourceCall) label() string {
	if c.feed != "" {
		return c.id + "/" + c.feed
	}
	return c.id
}

// fanOutCalls lists the provider invocations for one topic in fixed order:
// guardian once, reddit per profile feed, newsapi last and only when keyed.
func (a *Aggregator) fanOutCalls(p Profile) []sourceCall {
	calls := []sourceCall{{id: string(domain.SourceGuardian)}}
	for _, feed := range p.Feeds {
		calls = append(calls, sourceCall{id: string(domain.SourceReddit), feed: feed})
	}
	if a.keyed {
		calls = append(calls, sourceCall{id: string(domain.SourceNewsAPI)})
	}
	return calls
}

// FetchAll runs the sequential fan-out for one topic. Each provider call
// blocks before the next is issued; there are no retries. Failed calls land
// on Result.Failures with their records dropped, and the survivors are
// stable-sorted by publication time, newest first.
func (a *Aggregator) FetchAll(ctx context.Context, topic string, p Profile) Result {
	var res Result

	for _, call := range a.fanOutCalls(p) {
		f, err := a.reg.FetcherFor(call.id)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Source: call.label(), Err: err})
			continue
		}

		q := providers.Query{
			Topic:   topic,
			Feed:    call.feed,
			Filter:  p.Filter,
			Section: p.Section,
			From:    p.From,
			To:      p.To,
		}

		articles, err := f.Fetch(ctx, q)
		if err != nil {
			a.log.WarnObj("provider fetch failed", "fetch_error", map[string]any{
				"source": call.label(),
				"topic":  topic,
				"error":  err.Error(),
			})
			res.Failures = append(res.Failures, Failure{Source: call.label(), Err: err})
			continue
		}

		a.log.DebugObj("provider fetch succeeded", "fetch_done", map[string]any{
			"source": call.label(),
			"topic":  topic,
			"count":  len(articles),
		})
		res.Articles = append(res.Articles, articles...)
	}

	sortByRecency(res.Articles)
	res.Collected = len(res.Articles)
	return res
}

// Run repeats the fan-out across every profile topic in order, then applies
// the global dedupe, rank and cap.
func (a *Aggregator) Run(ctx context.Context, p Profile) Result {
	var (
		collected []domain.Article
		failures  []Failure
	)

	for _, topic := range p.Topics {
		r := a.FetchAll(ctx, topic, p)
		collected = append(collected, r.Articles...)
		failures = append(failures, r.Failures...)
	}

	total := len(collected)
	articles := dedupeByTitle(collected)
	sortByRecency(articles)
	if p.MaxItems > 0 && len(articles) > p.MaxItems {
		articles = articles[:p.MaxItems]
	}

	a.log.InfoObj("aggregation finished", "digest_done", map[string]any{
		"digest":    p.Name,
		"topics":    len(p.Topics),
		"collected": total,
		"kept":      len(articles),
		"failures":  len(failures),
	})

	return Result{Articles: articles, Failures: failures, Collected: total}
}

// dedupeByTitle removes later records whose lowercased title was already
// seen, preserving accumulation order.
func dedupeByTitle(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		key := a.TitleKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// sortByRecency orders newest first. Records with unparseable dates carry
// the zero timestamp and settle at the end; the sort is stable so ties keep
// accumulation order.
func sortByRecency(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
