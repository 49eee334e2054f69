package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"github.com/paperboy-hq/paperboy/internal/aggregator"
	"github.com/paperboy-hq/paperboy/internal/archive"
	"github.com/paperboy-hq/paperboy/internal/domain"
	"github.com/paperboy-hq/paperboy/pkg/publishers"
)

const archiveFileName = "major_news_2018_to_today.csv"

type fakeDigester struct {
	res   aggregator.Result
	calls int
}

func (f *fakeDigester) Run(_ context.Context, _ aggregator.Profile) aggregator.Result {
	f.calls++
	return f.res
}

type fakeEnricher struct {
	calls int
}

func (f *fakeEnricher) Enrich(_ context.Context, articles []domain.Article) []domain.Article {
	f.calls++
	out := make([]domain.Article, len(articles))
	copy(out, articles)
	for i := range out {
		if out[i].Description == "" {
			out[i].Description = "enriched"
		}
	}
	return out
}

type fakeJournal struct {
	runs      []archive.Run
	recorded  []archive.Run
	lastLimit int
	err       error
}

func (f *fakeJournal) RecordRun(run archive.Run) error {
	f.recorded = append(f.recorded, run)
	return f.err
}

func (f *fakeJournal) RecentRuns(limit int) ([]archive.Run, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.runs, nil
}

type fakePublisher struct {
	events []publishers.Event
}

func (f *fakePublisher) ID() string   { return "fake" }
func (f *fakePublisher) Type() string { return "http" }

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) error {
	f.events = append(f.events, evt)
	return nil
}

func digestArticles() []domain.Article {
	return []domain.Article{
		{
			Source:       domain.SourceGuardian,
			SourceName:   "The Guardian",
			Title:        "Markets rally",
			Description:  "Quite a day.",
			URL:          "https://guardian.example/rally",
			PublishedAt:  time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			PublishedRaw: "2024-01-02T10:00:00Z",
		},
		{
			Source:       domain.SourceReddit,
			SourceName:   "Reddit r/news",
			Title:        "Link post",
			URL:          "https://reddit.example/post",
			PublishedAt:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			PublishedRaw: "2024-01-01T10:00:00Z",
		},
	}
}

func newTestServer(t *testing.T, opts Options) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	opts.OutputDir = dir
	return New(opts), dir
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", target, nil)
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestIndexServesDownloadLink(t *testing.T) {
	srv, _ := newTestServer(t, Options{Digester: &fakeDigester{}})

	w := get(srv, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Header().Get("Content-Type"), "text/html"))
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Major News Archive"))
	assert.Equal(t, true, strings.Contains(w.Body.String(), `href="/download"`))
}

func TestDownloadBuildsArchiveOnFirstRequest(t *testing.T) {
	dig := &fakeDigester{res: aggregator.Result{Articles: digestArticles(), Collected: 3}}
	srv, dir := newTestServer(t, Options{Digester: dig})

	w := get(srv, "/download")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, dig.calls)
	assert.Equal(t, true, strings.Contains(w.Header().Get("Content-Disposition"), archiveFileName))
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Markets rally"))

	_, err := os.Stat(filepath.Join(dir, archiveFileName))
	assert.Equal(t, nil, err)

	// a second download serves the file without rebuilding
	w = get(srv, "/download")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, dig.calls)
}

func TestDownloadServesExistingFileAsIs(t *testing.T) {
	dig := &fakeDigester{res: aggregator.Result{Articles: digestArticles()}}
	srv, dir := newTestServer(t, Options{Digester: dig})

	stale := "Date,Title,Source,Source Name,Description,URL\nold,row,,,,\n"
	err := os.WriteFile(filepath.Join(dir, archiveFileName), []byte(stale), 0o644)
	assert.Equal(t, nil, err)

	w := get(srv, "/download")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, stale, w.Body.String())
	assert.Equal(t, 0, dig.calls)
}

func TestDownloadEmptyDigest(t *testing.T) {
	dig := &fakeDigester{}
	srv, dir := newTestServer(t, Options{Digester: dig})

	w := get(srv, "/download")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, dig.calls)

	_, err := os.Stat(filepath.Join(dir, archiveFileName))
	assert.Equal(t, true, os.IsNotExist(err))
}

func TestDownloadGenerationFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dig := &fakeDigester{res: aggregator.Result{Articles: digestArticles()}}
	srv := New(Options{
		OutputDir: filepath.Join(t.TempDir(), "missing-subdir"),
		Digester:  dig,
	})

	w := get(srv, "/download")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "error"))
}

func TestDownloadRunsEnricher(t *testing.T) {
	dig := &fakeDigester{res: aggregator.Result{Articles: digestArticles()}}
	enr := &fakeEnricher{}
	srv, _ := newTestServer(t, Options{Digester: dig, Enricher: enr})

	w := get(srv, "/download")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, enr.calls)
	// the reddit row had no description, the enricher filled it
	assert.Equal(t, true, strings.Contains(w.Body.String(), "enriched"))
}

func TestDownloadJournalsAndPublishes(t *testing.T) {
	dig := &fakeDigester{res: aggregator.Result{
		Articles:  digestArticles(),
		Collected: 9,
		Failures:  []aggregator.Failure{{Source: "reddit/news", Err: os.ErrDeadlineExceeded}},
	}}
	journal := &fakeJournal{}
	pub := &fakePublisher{}
	srv, dir := newTestServer(t, Options{
		Digester:   dig,
		Store:      journal,
		Publishers: []publishers.Publisher{pub},
	})

	w := get(srv, "/download")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, len(journal.recorded))
	run := journal.recorded[0]
	assert.Equal(t, "major", run.Digest)
	assert.Equal(t, 9, run.Collected)
	assert.Equal(t, 2, run.Kept)
	assert.Equal(t, 1, len(run.Failures))
	assert.Equal(t, filepath.Join(dir, archiveFileName), run.ArtifactPath)

	assert.Equal(t, 1, len(pub.events))
	evt := pub.events[0]
	assert.Equal(t, "major", evt.Digest)
	assert.Equal(t, 2, evt.ArticleCount)
	assert.Equal(t, []string{"Markets rally", "Link post"}, evt.Headlines)
	assert.Equal(t, filepath.Join(dir, archiveFileName), evt.ArtifactPath)
}

func TestRegenerateArchiveRebuildsExistingFile(t *testing.T) {
	dig := &fakeDigester{res: aggregator.Result{Articles: digestArticles()}}
	srv, dir := newTestServer(t, Options{Digester: dig})

	stale := "stale contents"
	path := filepath.Join(dir, archiveFileName)
	assert.Equal(t, nil, os.WriteFile(path, []byte(stale), 0o644))

	assert.Equal(t, nil, srv.RegenerateArchive(context.Background()))
	assert.Equal(t, 1, dig.calls)

	fresh, err := os.ReadFile(path)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.Contains(string(fresh), "Markets rally"))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{Digester: &fakeDigester{}})

	w := get(srv, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "ok"))
}

func TestRunsEndpoint(t *testing.T) {
	journal := &fakeJournal{runs: []archive.Run{{Digest: "major", Kept: 50}}}
	srv, _ := newTestServer(t, Options{Digester: &fakeDigester{}, Store: journal})

	w := get(srv, "/runs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, journal.lastLimit)
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"digest":"major"`))

	get(srv, "/runs?limit=500")
	assert.Equal(t, 100, journal.lastLimit)

	get(srv, "/runs?limit=3")
	assert.Equal(t, 3, journal.lastLimit)

	get(srv, "/runs?limit=bogus")
	assert.Equal(t, 20, journal.lastLimit)
}

func TestRunsEndpointWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, Options{Digester: &fakeDigester{}})

	w := get(srv, "/runs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"runs":[]`))
}
