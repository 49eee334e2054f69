// Package server exposes the news archive over HTTP: a landing page, a CSV
// download that builds the archive on first request, and a run journal view.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/paperboy-hq/paperboy/internal/aggregator"
	"github.com/paperboy-hq/paperboy/internal/archive"
	"github.com/paperboy-hq/paperboy/internal/domain"
	"github.com/paperboy-hq/paperboy/internal/export"
	"github.com/paperboy-hq/paperboy/internal/logger"
	"github.com/paperboy-hq/paperboy/pkg/publishers"
)

// eventHeadlines caps how many headlines ride along on a digest event.
const eventHeadlines = 5

// Digester runs the aggregation pipeline for a profile.
type Digester interface {
	Run(ctx context.Context, p aggregator.Profile) aggregator.Result
}

// Enricher fills missing article fields after aggregation.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// RunStore journals digest runs.
type RunStore interface {
	RecordRun(run archive.Run) error
	RecentRuns(limit int) ([]archive.Run, error)
}

// Options wires the server's collaborators. Enricher, Store and Publishers
// are optional.
type Options struct {
	OutputDir  string
	Digester   Digester
	Enricher   Enricher
	Store      RunStore
	Publishers []publishers.Publisher
	Logger     logger.Logger
}

// Server serves the archive page and rebuilds the CSV on demand.
type Server struct {
	outputDir string
	digester  Digester
	enricher  Enricher
	store     RunStore
	pubs      []publishers.Publisher
	log       logger.Logger
	engine    *gin.Engine
	now       func() time.Time

	// buildMu serializes archive rebuilds so concurrent downloads trigger
	// only one pipeline run.
	buildMu sync.Mutex
}

// New builds a Server and its router.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}

	s := &Server{
		outputDir: opts.OutputDir,
		digester:  opts.Digester,
		enricher:  opts.Enricher,
		store:     opts.Store,
		pubs:      opts.Publishers,
		log:       log,
		now:       time.Now,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/", s.handleIndex)
	r.GET("/download", s.handleDownload)
	r.GET("/health", s.handleHealth)
	r.GET("/runs", s.handleRuns)

	return r
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.log.InfoObj("archive server listening", "server_start", map[string]any{
		"addr": addr,
	})
	return s.engine.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// handleDownload streams the archive CSV, building it first when no file
// exists yet. An existing file is served as-is, however old.
func (s *Server) handleDownload(c *gin.Context) {
	path, err := s.ensureArtifact(c.Request.Context())
	if err != nil {
		s.log.ErrorObj("archive build failed", "archive_error", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Archive generation failed"})
		return
	}
	if path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No articles collected yet"})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []archive.Run{}})
		return
	}

	runs, err := s.store.RecentRuns(getQueryLimit(c, s.log))
	if err != nil {
		s.log.ErrorObj("run journal read failed", "journal_error", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Journal error"})
		return
	}
	if runs == nil {
		runs = []archive.Run{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// ensureArtifact returns the archive CSV path, generating the file only when
// it is absent. It returns "" without error when the pipeline yielded no
// articles.
func (s *Server) ensureArtifact(ctx context.Context) (string, error) {
	path := s.artifactPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat archive %s: %w", path, err)
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	// Another request may have built the file while we waited on the lock.
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return s.generate(ctx)
}

// RegenerateArchive rebuilds the archive CSV unconditionally. The scheduler
// calls this to keep the served file fresh.
func (s *Server) RegenerateArchive(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	_, err := s.generate(ctx)
	return err
}

// generate runs the archive digest end to end: aggregate, enrich, export,
// journal, publish. Callers hold buildMu.
func (s *Server) generate(ctx context.Context) (string, error) {
	profile := aggregator.ArchiveProfile(s.now())
	started := s.now()

	res := s.digester.Run(ctx, profile)

	articles := res.Articles
	if s.enricher != nil {
		articles = s.enricher.Enrich(ctx, articles)
	}

	path, err := export.WriteCSV(filepath.Join(s.outputDir, profile.ArtifactName), articles)
	if err != nil {
		return "", fmt.Errorf("write archive csv: %w", err)
	}

	finished := s.now()
	s.recordRun(profile, started, finished, res, path)
	s.publish(ctx, profile, finished, articles, path)

	return path, nil
}

// recordRun journals the build. Journal failures are logged, never fatal.
func (s *Server) recordRun(p aggregator.Profile, started, finished time.Time, res aggregator.Result, path string) {
	if s.store == nil {
		return
	}

	run := archive.Run{
		Digest:       p.Name,
		StartedAt:    started,
		FinishedAt:   finished,
		Topics:       len(p.Topics),
		Collected:    res.Collected,
		Kept:         len(res.Articles),
		ArtifactPath: path,
	}
	for _, f := range res.Failures {
		run.Failures = append(run.Failures, fmt.Sprintf("%s: %v", f.Source, f.Err))
	}

	if err := s.store.RecordRun(run); err != nil {
		s.log.WarnObj("run journal write failed", "journal_error", map[string]any{
			"error": err.Error(),
		})
	}
}

// publish notifies the configured sinks about the fresh artifact.
func (s *Server) publish(ctx context.Context, p aggregator.Profile, finished time.Time, articles []domain.Article, path string) {
	if len(s.pubs) == 0 || path == "" {
		return
	}

	evt := publishers.Event{
		Digest:       p.Name,
		GeneratedAt:  finished,
		ArticleCount: len(articles),
		Topics:       p.Topics,
		ArtifactPath: path,
	}
	for i, a := range articles {
		if i == eventHeadlines {
			break
		}
		evt.Headlines = append(evt.Headlines, a.Title)
	}

	publishers.PublishAll(ctx, s.pubs, evt, s.log)
}

func (s *Server) artifactPath() string {
	return filepath.Join(s.outputDir, aggregator.ArchiveProfile(s.now()).ArtifactName)
}

func getQueryLimit(c *gin.Context, log logger.Logger) int {
	const (
		defaultLimit = 20
		maxLimit     = 100
	)

	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		log.WarnObj("invalid limit parameter, using default", "bad_query_param", map[string]any{
			"value": raw,
		})
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
