package portal

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that an expected UI element is absent from the
// current page. Callers recover from it at the smallest enclosing loop
// iteration by skipping the item.
var ErrNotFound = errors.New("element not found")

// Anchor is a link discovered on the current page. URL is always the
// resolved absolute href.
type Anchor struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Driver is the browser automation capability the portal logic depends on.
// The production implementation drives a headless Chrome tab; tests swap in
// an in-memory double. All waits are bounded; a timeout surfaces as an error
// the caller handles at the page, target, or entry granularity.
type Driver interface {
	// Navigate loads a URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until an element matching the selector is visible.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// WaitTitleContains blocks until the page title contains the substring.
	WaitTitleContains(ctx context.Context, substr string, timeout time.Duration) error
	// Anchors enumerates the links for every element matching the selector.
	// Elements without a usable href are skipped individually.
	Anchors(ctx context.Context, selector string) ([]Anchor, error)
	// OuterHTML captures the outer HTML of the first match.
	OuterHTML(ctx context.Context, selector string) (string, error)
	// Click waits for the first match to be clickable and clicks it.
	Click(ctx context.Context, selector string, timeout time.Duration) error
	// SendKeys types into the first match. A trailing "\n" presses Enter.
	SendKeys(ctx context.Context, selector, keys string) error
	// ConfirmAnchor waits for the link whose resolved href equals url to
	// become interactable, focuses it, and presses Enter. This is an
	// in-place activation, not a navigation.
	ConfirmAnchor(ctx context.Context, url string, timeout time.Duration) error
	// ScrollToNth scrolls the n-th (zero-based) match into the viewport.
	// Returns ErrNotFound when there are not enough matches.
	ScrollToNth(ctx context.Context, selector string, n int) error
	// Sleep pauses for a fixed settle interval.
	Sleep(ctx context.Context, d time.Duration) error
}
