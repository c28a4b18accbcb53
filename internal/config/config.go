// Package config builds the run configuration from the environment. It is
// constructed once by main and passed down explicitly; nothing here runs at
// import time.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds everything a run needs. Credentials are opaque strings.
type Config struct {
	// PortalURL is the authenticated entry point (the login page).
	PortalURL string
	// Login and Password are the library credentials typed into the form.
	Login    string
	Password string

	// StocksURL is the investment catalog to crawl.
	StocksURL string
	// NewsletterURL is the newsletter collection page.
	NewsletterURL string
	// NewsletterTitleMarker confirms the collection page loaded.
	NewsletterTitleMarker string

	// DownloadDir receives newsletter PDFs; ReportDir receives extraction
	// output.
	DownloadDir string
	ReportDir   string

	// SummaryEndpoint, when set, enables the post-run summarization client.
	SummaryEndpoint string

	PageTimeout    time.Duration
	SettleDelay    time.Duration
	DownloadSettle time.Duration

	// FailClosedFilters rejects all rows when a filtered column is missing
	// from a page's header, instead of admitting them.
	FailClosedFilters bool
}

// FromEnv reads the environment into a Config. Missing credentials are a
// startup-fatal condition reported before any navigation happens.
func FromEnv() (Config, error) {
	cfg := Config{
		PortalURL:             os.Getenv("PORTAL_URL"),
		Login:                 os.Getenv("PORTAL_LOGIN"),
		Password:              os.Getenv("PORTAL_PASSWORD"),
		StocksURL:             os.Getenv("PORTAL_STOCKS_URL"),
		NewsletterURL:         os.Getenv("PORTAL_NEWSLETTER_URL"),
		NewsletterTitleMarker: "Stock Investor",
		DownloadDir:           envOr("DOWNLOAD_DIR", "/tmp/downloads"),
		ReportDir:             envOr("REPORT_DIR", "output"),
		SummaryEndpoint:       os.Getenv("SUMMARY_API_ENDPOINT"),
		PageTimeout:           10 * time.Second,
		SettleDelay:           2 * time.Second,
		DownloadSettle:        7 * time.Second,
		FailClosedFilters:     os.Getenv("FILTER_FAIL_CLOSED") == "true",
	}

	var missing []string
	if cfg.PortalURL == "" {
		missing = append(missing, "PORTAL_URL")
	}
	if cfg.Login == "" {
		missing = append(missing, "PORTAL_LOGIN")
	}
	if cfg.Password == "" {
		missing = append(missing, "PORTAL_PASSWORD")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s",
			strings.Join(missing, ", "))
	}

	base := strings.TrimRight(cfg.PortalURL, "/")
	if cfg.StocksURL == "" {
		cfg.StocksURL = base + "/stocks"
	}
	if cfg.NewsletterURL == "" {
		cfg.NewsletterURL = base + "/collections/767/stock-investor-publications"
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
