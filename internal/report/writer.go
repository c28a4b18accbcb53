// Package report writes extracted records to disk, one JSON document per
// source page, and keeps an in-memory aggregate for post-run consumers.
package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-scripts/researchcrawl/internal/table"
)

// PageReport is the on-disk document for one extracted page.
type PageReport struct {
	URL         string         `json:"url"`
	ExtractedAt time.Time      `json:"extracted_at"`
	Records     []table.Record `json:"records"`
}

// Writer persists page reports into an output directory.
type Writer struct {
	outputDir string
	pages     []PageReport
}

// NewWriter creates the output directory if it does not exist.
func NewWriter(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{outputDir: outputDir}, nil
}

// Report writes the records for one source page to its own file.
func (w *Writer) Report(sourceURL string, records []table.Record) error {
	page := PageReport{
		URL:         sourceURL,
		ExtractedAt: time.Now().UTC(),
		Records:     records,
	}
	w.pages = append(w.pages, page)

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return err
	}
	name := sanitizeURLForFilename(sourceURL) + ".json"
	return os.WriteFile(filepath.Join(w.outputDir, name), data, 0644)
}

// Combined returns every page report of the run as one JSON document.
func (w *Writer) Combined() ([]byte, error) {
	return json.MarshalIndent(w.pages, "", "  ")
}

// sanitizeURLForFilename flattens a URL into a safe file name.
func sanitizeURLForFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		rawURL = strings.Map(func(r rune) rune {
			if r == '/' || r == ':' {
				return '_'
			}
			return r
		}, rawURL)
		return rawURL
	}

	name := u.Hostname()
	if path := strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "_"); path != "" {
		name += "_" + path
	}
	if name == "" {
		name = "index"
	}
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}
