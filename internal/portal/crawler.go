// Package portal drives an authenticated, JS-rendered research portal:
// logging in, walking investment catalogs, revealing in-page detail tables,
// and downloading newsletter issues. All navigation is strictly sequential
// because a single browser tab is the shared resource.
package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/researchcrawl/internal/artifacts"
	"github.com/go-scripts/researchcrawl/internal/table"
)

// Selectors for the portal's stable structural markers.
const (
	selLoginBarcode   = "#barcode"
	selLoginPin       = "#pin"
	selHomeNav        = "#site-nav__home"
	selSectionHeader  = ".investment-ideas__section-header"
	selCardTitle      = ".mdc-investment-list-card .mdc-card__title"
	selPickListTable  = ".pick-list__table-container"
	selPortfolioTable = ".model-portfolio__table-container"
	selPanelToggle    = ".mdc-side-panel__toggle"
	selHeadingLink    = ".mdc-heading a"
	selDownloadLink   = ".article__article-download"
)

// Reporter receives the records extracted from one page. Records are
// ephemeral; the reporter is their only sink.
type Reporter interface {
	Report(sourceURL string, records []table.Record) error
}

// Options tunes the crawler's waits and extraction behavior.
type Options struct {
	// PageTimeout bounds every element-readiness wait.
	PageTimeout time.Duration
	// SettleDelay compensates for client-side re-rendering that has no
	// completion signal.
	SettleDelay time.Duration
	// DownloadSettle is how long to wait for a triggered download to land.
	DownloadSettle time.Duration
	// TitleMarker confirms the newsletter collection page loaded.
	TitleMarker string
	// Extract selects and filters table columns on every detail view.
	Extract table.Options
}

// Crawler orchestrates one run against the portal. It owns no browser
// state of its own; everything goes through the injected Driver.
type Crawler struct {
	d      Driver
	report Reporter
	store  *artifacts.Store
	opts   Options
}

func New(d Driver, report Reporter, store *artifacts.Store, opts Options) *Crawler {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 10 * time.Second
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 2 * time.Second
	}
	if opts.DownloadSettle <= 0 {
		opts.DownloadSettle = 7 * time.Second
	}
	return &Crawler{d: d, report: report, store: store, opts: opts}
}

// Login authenticates the shared browser session. Everything else assumes
// it has been called once and succeeded.
func (c *Crawler) Login(ctx context.Context, portalURL, login, password string) error {
	if err := c.d.Navigate(ctx, portalURL); err != nil {
		return fmt.Errorf("loading login page: %w", err)
	}
	if err := c.d.WaitVisible(ctx, selLoginBarcode, c.opts.PageTimeout); err != nil {
		return fmt.Errorf("login form never appeared: %w", err)
	}
	if err := c.d.SendKeys(ctx, selLoginBarcode, login); err != nil {
		return fmt.Errorf("typing login: %w", err)
	}
	if err := c.d.SendKeys(ctx, selLoginPin, password+"\n"); err != nil {
		return fmt.Errorf("typing password: %w", err)
	}
	if err := c.d.WaitVisible(ctx, selHomeNav, c.opts.PageTimeout); err != nil {
		return fmt.Errorf("home navigation never appeared after login: %w", err)
	}
	log.Info("logged in", "portal", portalURL)
	return nil
}

// CrawlCatalog walks one catalog page: direct targets are navigated and
// extracted immediately, indirect targets are queued for the revisit pass,
// unsupported links are dropped with a diagnostic. A failure on one target
// never aborts the rest of the page.
func (c *Crawler) CrawlCatalog(ctx context.Context, catalogURL string) error {
	if err := c.d.Navigate(ctx, catalogURL); err != nil {
		return fmt.Errorf("loading catalog %s: %w", catalogURL, err)
	}
	if err := c.d.WaitVisible(ctx, selSectionHeader, c.opts.PageTimeout); err != nil {
		return fmt.Errorf("catalog %s header never appeared: %w", catalogURL, err)
	}

	cards, err := c.d.Anchors(ctx, selCardTitle)
	if err != nil {
		return fmt.Errorf("enumerating catalog cards on %s: %w", catalogURL, err)
	}
	log.Info("catalog scanned", "url", catalogURL, "cards", len(cards))

	var indirect []string
	for _, card := range cards {
		switch Classify(card.URL) {
		case StrategyDirect:
			if err := c.crawlDirect(ctx, card.URL); err != nil {
				log.Warn("skipping direct target", "url", card.URL, "error", err)
			}
		case StrategyIndirect:
			indirect = append(indirect, card.URL)
		default:
			log.Warn("skipping unsupported link", "url", card.URL)
		}
	}

	c.revisit(ctx, catalogURL, indirect)
	return nil
}

func (c *Crawler) crawlDirect(ctx context.Context, targetURL string) error {
	log.Debug("fetching direct target", "url", targetURL)
	if err := c.d.Navigate(ctx, targetURL); err != nil {
		return err
	}
	if err := c.d.WaitVisible(ctx, selPickListTable, c.opts.PageTimeout); err != nil {
		return err
	}
	return c.extractRegion(ctx, targetURL, selPickListTable)
}

// extractRegion captures a table container and reports the surviving rows.
// Extraction errors are returned for the caller to log; they always mean
// zero records, never a crashed crawl.
func (c *Crawler) extractRegion(ctx context.Context, sourceURL, containerSel string) error {
	html, err := c.d.OuterHTML(ctx, containerSel)
	if err != nil {
		return fmt.Errorf("capturing table region: %w", err)
	}
	records, err := table.Extract(html, c.opts.Extract)
	if err != nil {
		return fmt.Errorf("extracting table: %w", err)
	}
	log.Info("extracted records", "url", sourceURL, "rows", len(records))
	if c.report == nil {
		return nil
	}
	return c.report.Report(sourceURL, records)
}
