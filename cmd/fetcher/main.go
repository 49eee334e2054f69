// Command fetcher runs one digest from the terminal: it aggregates the
// configured news sources for the chosen profile, prints the result, and can
// export it as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/paperboy-hq/paperboy/internal/aggregator"
	"github.com/paperboy-hq/paperboy/internal/archive"
	"github.com/paperboy-hq/paperboy/internal/config"
	"github.com/paperboy-hq/paperboy/internal/crawler"
	"github.com/paperboy-hq/paperboy/internal/domain"
	"github.com/paperboy-hq/paperboy/internal/export"
	"github.com/paperboy-hq/paperboy/internal/logger"
	"github.com/paperboy-hq/paperboy/pkg/httpclient"
	"github.com/paperboy-hq/paperboy/pkg/publishers"
)

func main() {
	godotenv.Load()

	var (
		configPath = flag.String("config", "", "path to config file (optional)")
		digest     = flag.String("digest", "investment", "digest profile: investment, major")
		out        = flag.String("out", "", "write the digest as CSV to this path")
		show       = flag.Int("show", 0, "print only the first n articles (0 = all)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := aggregator.ProfileByName(*digest, time.Now())
	if err != nil {
		log.Fatalf("%v", err)
	}

	client := httpclient.NewRestyClient(cfg.RequestTimeout)
	agg := aggregator.New(aggregator.Config{
		APIKey: cfg.APIKey,
		Client: client,
		Logger: logg,
	})

	if !cfg.Keyed() {
		logg.InfoObj("no NewsAPI key configured, running open sources only", "unkeyed_run", nil)
	}

	res := agg.Run(ctx, profile)

	articles := res.Articles
	if cfg.EnrichDescriptions {
		articles = crawler.NewScraper(client, logg).Enrich(ctx, articles)
	}

	printDigest(profile, articles, res, *show)

	if *out != "" {
		path, err := export.WriteCSV(*out, articles)
		if err != nil {
			log.Fatalf("write csv: %v", err)
		}
		if path == "" {
			fmt.Println("No articles collected, CSV not written.")
		} else {
			fmt.Printf("Wrote %d articles to %s\n", len(articles), path)
		}
	}

	recordRun(cfg, profile, res, *out, logg)
	notify(ctx, cfg, profile, articles, *out, logg)
}

// printDigest renders the numbered article list on stdout.
func printDigest(p aggregator.Profile, articles []domain.Article, res aggregator.Result, show int) {
	fmt.Printf("=== %s digest: %d articles (%d collected, %d source failures) ===\n\n",
		p.Name, len(articles), res.Collected, len(res.Failures))

	for i, a := range articles {
		if show > 0 && i == show {
			fmt.Printf("... and %d more\n", len(articles)-show)
			break
		}

		fmt.Printf("%d. %s\n", i+1, a.Title)
		fmt.Printf("   %s | %s\n", a.SourceName, displayDate(a))
		if desc := truncate(a.Description, 100); desc != "" {
			fmt.Printf("   %s\n", desc)
		}
		fmt.Printf("   %s\n\n", a.URL)
	}

	for _, f := range res.Failures {
		fmt.Printf("source %s failed: %v\n", f.Source, f.Err)
	}
}

func displayDate(a domain.Article) string {
	if a.PublishedAt.IsZero() {
		return a.PublishedRaw
	}
	return a.PublishedAt.Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// recordRun journals the digest when a run database is configured.
func recordRun(cfg *config.Config, p aggregator.Profile, res aggregator.Result, artifact string, logg logger.Logger) {
	if cfg.ArchiveDB == "" {
		return
	}

	store, err := archive.Open(cfg.ArchiveDB)
	if err != nil {
		logg.WarnObj("run journal unavailable", "journal_error", map[string]any{"error": err.Error()})
		return
	}
	defer store.Close()

	now := time.Now()
	run := archive.Run{
		Digest:       p.Name,
		StartedAt:    now,
		FinishedAt:   now,
		Topics:       len(p.Topics),
		Collected:    res.Collected,
		Kept:         len(res.Articles),
		ArtifactPath: artifact,
	}
	for _, f := range res.Failures {
		run.Failures = append(run.Failures, fmt.Sprintf("%s: %v", f.Source, f.Err))
	}

	if err := store.RecordRun(run); err != nil {
		logg.WarnObj("run journal write failed", "journal_error", map[string]any{"error": err.Error()})
	}
}

// notify delivers the digest event to the configured publishers.
func notify(ctx context.Context, cfg *config.Config, p aggregator.Profile, articles []domain.Article, artifact string, logg logger.Logger) {
	if cfg.PublishersFile == "" {
		return
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		logg.ErrorObj("publisher registry load failed", "publisher_error", map[string]any{"error": err.Error()})
		return
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), logg)
	if err != nil {
		logg.ErrorObj("publisher build failed", "publisher_error", map[string]any{"error": err.Error()})
		return
	}

	evt := publishers.Event{
		Digest:       p.Name,
		GeneratedAt:  time.Now(),
		ArticleCount: len(articles),
		Topics:       p.Topics,
		ArtifactPath: artifact,
	}
	for i, a := range articles {
		if i == 5 {
			break
		}
		evt.Headlines = append(evt.Headlines, a.Title)
	}

	publishers.PublishAll(ctx, pubs, evt, logg)
}
