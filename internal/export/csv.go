package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/paperboy-hq/paperboy/internal/domain"
)

// displayTimeFormat is the date rendering used in the artifact when the
// publication time parsed at ingestion.
const displayTimeFormat = "2006-01-02 15:04:05"

// csvHeader is the fixed column order of the artifact.
var csvHeader = []string{"Date", "Title", "Source", "Source Name", "Description", "URL"}

// WriteCSV materializes the article list at path and returns the written
// path. An empty list writes nothing and returns "".
func WriteCSV(path string, articles []domain.Article) (string, error) {
	if len(articles) == 0 {
		return "", nil
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range articles {
		row := []string{
			displayDate(a),
			a.Title,
			string(a.Source),
			a.SourceName,
			a.Description,
			a.URL,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv %s: %w", path, err)
	}

	return path, nil
}

// displayDate renders the canonical timestamp when ingestion parsed one and
// passes the raw provider string through unchanged otherwise.
func displayDate(a domain.Article) string {
	if !a.PublishedAt.IsZero() {
		return a.PublishedAt.Format(displayTimeFormat)
	}
	return a.PublishedRaw
}
