package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/go-scripts/researchcrawl/internal/artifacts"
	"github.com/go-scripts/researchcrawl/internal/browser"
	"github.com/go-scripts/researchcrawl/internal/config"
	"github.com/go-scripts/researchcrawl/internal/portal"
	"github.com/go-scripts/researchcrawl/internal/report"
	"github.com/go-scripts/researchcrawl/internal/summarize"
	"github.com/go-scripts/researchcrawl/internal/table"
)

// CLI flags; credentials and endpoints come from the environment.
type CLIFlags struct {
	Stocks      bool `help:"Crawl the stock catalog and extract its tables." default:"true" negatable:""`
	Newsletters bool `help:"Download newsletter issues." default:"false"`
	Debug       bool `help:"Enable debug logging." default:"false"`
}

// Default extraction shape for the portfolio tables.
var (
	wantedColumns = []string{"Name", "Ticker", "Fair Value", "Price/Fair Value"}
	currencyOnly  = map[string][]string{"Base Currency": {"US Dollar"}}
)

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("researchcrawl"),
		kong.Description("Fetches investment tables and newsletter PDFs from a research portal."),
	)
	if flags.Debug {
		log.SetLevel(log.DebugLevel)
	}

	// Load .env if it exists (silently ignore if not found).
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	if err := run(context.Background(), flags, cfg); err != nil {
		log.Error("run failed", "error", err)
	}
}

func run(ctx context.Context, flags CLIFlags, cfg config.Config) error {
	store, err := artifacts.NewStore(cfg.DownloadDir)
	if err != nil {
		return err
	}
	reporter, err := report.NewWriter(cfg.ReportDir)
	if err != nil {
		return err
	}

	session, err := browser.NewSession(ctx, browser.Options{DownloadDir: store.Dir()})
	if err != nil {
		return err
	}
	// The session is torn down on every exit path, success or failure.
	defer session.Close()

	crawler := portal.New(session, reporter, store, portal.Options{
		PageTimeout:    cfg.PageTimeout,
		SettleDelay:    cfg.SettleDelay,
		DownloadSettle: cfg.DownloadSettle,
		TitleMarker:    cfg.NewsletterTitleMarker,
		Extract:        extractionOptions(cfg),
	})

	if err := crawler.Login(ctx, cfg.PortalURL, cfg.Login, cfg.Password); err != nil {
		return err
	}

	if flags.Stocks {
		if err := crawler.CrawlCatalog(ctx, cfg.StocksURL); err != nil {
			log.Error("catalog crawl failed", "url", cfg.StocksURL, "error", err)
		}
	}
	if flags.Newsletters {
		fetched, err := crawler.FetchNewsletters(ctx, cfg.NewsletterURL)
		if err != nil {
			log.Error("newsletter fetch failed", "url", cfg.NewsletterURL, "error", err)
		}
		log.Info("newsletters fetched", "count", len(fetched))
	}

	if flags.Stocks && cfg.SummaryEndpoint != "" {
		summarizeRun(ctx, cfg, reporter)
	}
	return nil
}

// summarizeRun posts the aggregated report to the configured endpoint once
// the crawl is done. Failures are logged and otherwise ignored.
func summarizeRun(ctx context.Context, cfg config.Config, reporter *report.Writer) {
	client, err := summarize.NewClient(summarize.Config{Endpoint: cfg.SummaryEndpoint})
	if err != nil {
		log.Error("summarizer misconfigured", "error", err)
		return
	}
	combined, err := reporter.Combined()
	if err != nil {
		log.Error("aggregating report", "error", err)
		return
	}
	summary, err := client.Summarize(ctx, string(combined))
	if err != nil {
		log.Error("summarization failed", "error", err)
		return
	}
	path := filepath.Join(cfg.ReportDir, "summary.md")
	if err := os.WriteFile(path, []byte(summary), 0644); err != nil {
		log.Error("writing summary", "path", path, "error", err)
		return
	}
	log.Info("summary written", "path", path)
}

func extractionOptions(cfg config.Config) table.Options {
	wanted := make(map[string]bool, len(wantedColumns))
	for _, col := range wantedColumns {
		wanted[col] = true
	}
	filters := make(map[string]map[string]bool, len(currencyOnly))
	for col, values := range currencyOnly {
		accepted := make(map[string]bool, len(values))
		for _, v := range values {
			accepted[v] = true
		}
		filters[col] = accepted
	}
	policy := table.FailOpen
	if cfg.FailClosedFilters {
		policy = table.FailClosed
	}
	return table.Options{Wanted: wanted, Filters: filters, Policy: policy}
}
