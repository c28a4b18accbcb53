// Package browser implements portal.Driver on a headless Chrome instance
// driven over the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/go-scripts/researchcrawl/internal/portal"
)

var _ portal.Driver = (*Session)(nil)

// Options configures the shared browser session.
type Options struct {
	// DownloadDir is where triggered downloads land. Empty disables the
	// download override.
	DownloadDir string
	// NavTimeout bounds full page loads. Defaults to 30s.
	NavTimeout time.Duration
}

// Session is the single browser the whole run shares. There is exactly one
// logical "current page"; callers must not interleave operations.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	navTimeout  time.Duration
}

// NewSession starts a headless browser. Close must always be called, on
// success and failure alike.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		navTimeout:  opts.NavTimeout,
	}
	if s.navTimeout <= 0 {
		s.navTimeout = 30 * time.Second
	}

	if opts.DownloadDir != "" {
		err := chromedp.Run(browserCtx,
			cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
				WithDownloadPath(opts.DownloadDir).
				WithEventsEnabled(true),
		)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("configuring download directory: %w", err)
		}
	}
	return s, nil
}

// Close tears the browser down.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// page derives a bounded chromedp context that also honors the caller's
// cancellation.
func (s *Session) page(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var pctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		pctx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		pctx, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return pctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	pctx, cancel := s.page(ctx, s.navTimeout)
	defer cancel()
	return chromedp.Run(pctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
}

func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	pctx, cancel := s.page(ctx, timeout)
	defer cancel()
	if err := chromedp.Run(pctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return nil
}

func (s *Session) WaitTitleContains(ctx context.Context, substr string, timeout time.Duration) error {
	pctx, cancel := s.page(ctx, timeout)
	defer cancel()
	js := fmt.Sprintf(`document.title.includes(%q)`, substr)
	var ok bool
	if err := chromedp.Run(pctx, chromedp.Poll(js, &ok, chromedp.WithPollingInterval(200*time.Millisecond))); err != nil {
		return fmt.Errorf("waiting for title to contain %q: %w", substr, err)
	}
	return nil
}

func (s *Session) Anchors(ctx context.Context, selector string) ([]portal.Anchor, error) {
	// Enumerate in-page so that one malformed card cannot abort the scan;
	// elements without a usable href are dropped individually.
	js := fmt.Sprintf(`(() => {
		const out = [];
		document.querySelectorAll(%q).forEach(el => {
			const a = el.matches('a') ? el : el.querySelector('a');
			if (!a || !a.href) {
				return;
			}
			out.push({ url: a.href, text: el.textContent.trim() });
		});
		return out;
	})()`, selector)

	pctx, cancel := s.page(ctx, s.navTimeout)
	defer cancel()
	var anchors []portal.Anchor
	if err := chromedp.Run(pctx, chromedp.Evaluate(js, &anchors)); err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", selector, err)
	}
	return anchors, nil
}

func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	pctx, cancel := s.page(ctx, s.navTimeout)
	defer cancel()
	var html string
	if err := chromedp.Run(pctx, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capturing %s: %w", selector, err)
	}
	return html, nil
}

func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	pctx, cancel := s.page(ctx, timeout)
	defer cancel()
	if err := chromedp.Run(pctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

func (s *Session) SendKeys(ctx context.Context, selector, keys string) error {
	pctx, cancel := s.page(ctx, s.navTimeout)
	defer cancel()
	return chromedp.Run(pctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, keys, chromedp.ByQuery),
	)
}

func (s *Session) ConfirmAnchor(ctx context.Context, url string, timeout time.Duration) error {
	// Identity is the resolved href, not a cached element handle: the
	// matching link is re-found on every poll until it is visible, then
	// focused and confirmed with Enter instead of a click.
	js := fmt.Sprintf(`(() => {
		const el = Array.from(document.querySelectorAll('a')).find(a => a.href === %q);
		if (!el || el.offsetParent === null) {
			return false;
		}
		el.focus();
		return true;
	})()`, url)

	pctx, cancel := s.page(ctx, timeout)
	defer cancel()
	var focused bool
	err := chromedp.Run(pctx, chromedp.Poll(js, &focused, chromedp.WithPollingInterval(200*time.Millisecond)))
	if err != nil {
		return fmt.Errorf("link %s never became interactable: %w", url, err)
	}
	return chromedp.Run(pctx, chromedp.KeyEvent(kb.Enter))
}

func (s *Session) ScrollToNth(ctx context.Context, selector string, n int) error {
	js := fmt.Sprintf(`(() => {
		const els = document.querySelectorAll(%q);
		if (els.length <= %d) {
			return false;
		}
		els[%d].scrollIntoView({ block: 'center' });
		return true;
	})()`, selector, n, n)

	pctx, cancel := s.page(ctx, s.navTimeout)
	defer cancel()
	var ok bool
	if err := chromedp.Run(pctx, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("scrolling to %s[%d]: %w", selector, n, err)
	}
	if !ok {
		return fmt.Errorf("fewer than %d matches for %s: %w", n+1, selector, portal.ErrNotFound)
	}
	return nil
}

func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
