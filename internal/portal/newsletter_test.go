package portal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/researchcrawl/internal/artifacts"
)

func TestCanonicalFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"March 2024 Stock Investor", "2024StockInvestor.pdf"},
		{"February 2024 Stock Investor", "2024StockInvestor.pdf"},
		{"  January   2023   Stock Investor ", "2023StockInvestor.pdf"},
		{"Special", "Special.pdf"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalFileName(tt.title), "title %q", tt.title)
	}
}

const (
	testCollectionURL = "https://portal.test/collections/767/stock-investor-publications"
	testArticle1URL   = "https://portal.test/articles/1"
	testArticle2URL   = "https://portal.test/articles/2"
	testArticle3URL   = "https://portal.test/articles/3"
)

// newNewsletterDriver scripts a collection page with three issues: one
// landing under its raw name, one landing under the hyphen-stripped
// variant, one that never lands at all.
func newNewsletterDriver(downloadDir string) *fakeDriver {
	d := newFakeDriver()

	collection := d.addPage(testCollectionURL)
	collection.title = "Stock Investor Publications"
	collection.anchors[selHeadingLink] = []Anchor{
		{URL: testArticle1URL, Text: "March 2024 Stock Investor"},
		{URL: testArticle2URL, Text: "April 2024 Stock-Investor"},
		{URL: testArticle3URL, Text: "May 2024 Fund Investor"},
	}

	for _, u := range []string{testArticle1URL, testArticle2URL, testArticle3URL} {
		d.addPage(u).visible[selDownloadLink] = true
	}

	landed := map[string]string{
		testArticle1URL: "March 2024 Stock Investor.pdf",
		testArticle2URL: "April 2024 StockInvestor.pdf", // site strips hyphens
	}
	d.onClick = func(pageURL, selector string) {
		if selector != selDownloadLink {
			return
		}
		name, ok := landed[pageURL]
		if !ok {
			return
		}
		_ = os.WriteFile(filepath.Join(downloadDir, name), []byte("%PDF"), 0644)
	}
	return d
}

func TestFetchNewsletters(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	require.NoError(t, err)

	d := newNewsletterDriver(dir)
	c := New(d, nil, store, Options{TitleMarker: "Stock Investor"})

	fetched, err := c.FetchNewsletters(context.Background(), testCollectionURL)
	require.NoError(t, err)

	// All three are attempted; the never-landing one is still reported
	// optimistically under its intended canonical name.
	assert.Equal(t, []string{
		"2024StockInvestor.pdf",
		"2024Stock-Investor.pdf",
		"2024FundInvestor.pdf",
	}, fetched)

	// Raw and hyphen-stripped landings both end up under canonical names.
	assert.FileExists(t, filepath.Join(dir, "2024StockInvestor.pdf"))
	assert.FileExists(t, filepath.Join(dir, "2024Stock-Investor.pdf"))
}

func TestFetchNewslettersIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	require.NoError(t, err)

	d := newNewsletterDriver(dir)
	c := New(d, nil, store, Options{TitleMarker: "Stock Investor"})

	_, err = c.FetchNewsletters(context.Background(), testCollectionURL)
	require.NoError(t, err)
	articleVisits := len(d.navigations)

	// Second run over an unchanged collection downloads nothing that
	// already landed. Only the never-landing issue is retried.
	fetched, err := c.FetchNewsletters(context.Background(), testCollectionURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024FundInvestor.pdf"}, fetched)
	assert.Equal(t, articleVisits+2, len(d.navigations),
		"collection page plus the one issue that never landed")
}

func TestFetchNewslettersWrongPageTitle(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	require.NoError(t, err)

	d := newFakeDriver()
	d.addPage(testCollectionURL).title = "Maintenance"
	c := New(d, nil, store, Options{TitleMarker: "Stock Investor"})

	_, err = c.FetchNewsletters(context.Background(), testCollectionURL)
	assert.Error(t, err)
}
