package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

const newsletterExt = ".pdf"

// CanonicalFileName derives the on-disk name for a newsletter issue from
// its display title: the leading month token is dropped and the remaining
// tokens are concatenated, so "March 2024 Stock Investor" becomes
// "2024StockInvestor.pdf". The name doubles as the completion marker that
// makes repeated runs idempotent. Returns "" for titles with no usable
// tokens.
func CanonicalFileName(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) > 1 {
		fields = fields[1:]
	}
	return strings.Join(fields, "") + newsletterExt
}

// FetchNewsletters downloads every newsletter issue listed on the
// collection page whose canonical file is not already on disk, and returns
// the canonical names of the issues it fetched. Per-entry failures are
// logged and skipped.
func (c *Crawler) FetchNewsletters(ctx context.Context, collectionURL string) ([]string, error) {
	if err := c.d.Navigate(ctx, collectionURL); err != nil {
		return nil, fmt.Errorf("loading newsletter collection: %w", err)
	}
	if err := c.d.WaitTitleContains(ctx, c.opts.TitleMarker, c.opts.PageTimeout); err != nil {
		return nil, fmt.Errorf("newsletter collection title never matched %q: %w",
			c.opts.TitleMarker, err)
	}

	entries, err := c.d.Anchors(ctx, selHeadingLink)
	if err != nil {
		return nil, fmt.Errorf("enumerating newsletter headings: %w", err)
	}
	log.Info("newsletter collection scanned", "url", collectionURL, "entries", len(entries))

	var fetched []string
	for _, entry := range entries {
		name := CanonicalFileName(entry.Text)
		if name == "" {
			log.Warn("heading has no usable title, skipping", "url", entry.URL)
			continue
		}
		if c.store.Has(name) {
			log.Debug("already downloaded, skipping", "file", name)
			continue
		}
		if err := c.download(ctx, entry.URL); err != nil {
			log.Warn("skipping newsletter entry", "url", entry.URL, "error", err)
			continue
		}
		raw := entry.Text + newsletterExt
		if err := c.store.Rename([]string{raw, strings.ReplaceAll(raw, "-", "")}, name); err != nil {
			// The site named the landed file something else; report the
			// canonical name anyway and let the next run reconcile.
			log.Warn("downloaded file name mismatch", "expected", raw, "error", err)
		}
		fetched = append(fetched, name)
	}
	return fetched, nil
}

func (c *Crawler) download(ctx context.Context, articleURL string) error {
	if err := c.d.Navigate(ctx, articleURL); err != nil {
		return fmt.Errorf("loading article: %w", err)
	}
	if err := c.d.WaitVisible(ctx, selDownloadLink, c.opts.PageTimeout); err != nil {
		return fmt.Errorf("download link never appeared: %w", err)
	}
	if err := c.d.Click(ctx, selDownloadLink, c.opts.PageTimeout); err != nil {
		return fmt.Errorf("clicking download link: %w", err)
	}
	// The download has no completion event worth trusting; give it a fixed
	// window to land.
	return c.d.Sleep(ctx, c.opts.DownloadSettle)
}
