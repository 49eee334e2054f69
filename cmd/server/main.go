// Command server runs the news archive web server. The archive CSV is built
// lazily on first download and can be refreshed on a cron schedule.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/paperboy-hq/paperboy/internal/aggregator"
	"github.com/paperboy-hq/paperboy/internal/archive"
	"github.com/paperboy-hq/paperboy/internal/config"
	"github.com/paperboy-hq/paperboy/internal/crawler"
	"github.com/paperboy-hq/paperboy/internal/logger"
	"github.com/paperboy-hq/paperboy/internal/server"
	"github.com/paperboy-hq/paperboy/pkg/httpclient"
	"github.com/paperboy-hq/paperboy/pkg/publishers"
)

func main() {
	godotenv.Load()

	configPath := flag.String("config", "", "path to config file (optional)")
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

	ctx := context.Background()

	client := httpclient.NewRestyClient(cfg.RequestTimeout)
	agg := aggregator.New(aggregator.Config{
		APIKey: cfg.APIKey,
		Client: client,
		Logger: logg,
	})

	if !cfg.Keyed() {
		logg.InfoObj("no NewsAPI key configured, running open sources only", "unkeyed_run", nil)
	}

	opts := server.Options{
		OutputDir: cfg.OutputDir,
		Digester:  agg,
		Logger:    logg,
	}

	if cfg.EnrichDescriptions {
		opts.Enricher = crawler.NewScraper(client, logg)
	}

	if cfg.ArchiveDB != "" {
		store, err := archive.Open(cfg.ArchiveDB)
		if err != nil {
			log.Fatalf("open run journal: %v", err)
		}
		defer store.Close()
		opts.Store = store
	}

	if cfg.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			log.Fatalf("load publishers: %v", err)
		}
		pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), logg)
		if err != nil {
			log.Fatalf("build publishers: %v", err)
		}
		opts.Publishers = pubs
	}

	srv := server.New(opts)

	if cfg.RefreshSchedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.RefreshSchedule, func() {
			if err := srv.RegenerateArchive(ctx); err != nil {
				logg.ErrorObj("scheduled archive refresh failed", "refresh_error", map[string]any{
					"error": err.Error(),
				})
			}
		})
		if err != nil {
			log.Fatalf("invalid refresh_schedule %q: %v", cfg.RefreshSchedule, err)
		}
		c.Start()
		defer c.Stop()

		logg.InfoObj("archive refresh scheduled", "refresh_scheduled", map[string]any{
			"schedule": cfg.RefreshSchedule,
		})
	}

	if err := srv.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
