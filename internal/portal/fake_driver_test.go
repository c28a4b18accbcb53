package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-scripts/researchcrawl/internal/table"
)

// fakePage is the scripted state of one URL in the fake driver.
type fakePage struct {
	title   string
	visible map[string]bool
	anchors map[string][]Anchor
	html    map[string]string
	headers int
}

// fakeDriver is an in-memory Driver double. It records every interaction
// so tests can assert on navigation order and activations.
type fakeDriver struct {
	pages       map[string]*fakePage
	current     string
	navigations []string
	typed       []string
	clicked     []string
	confirmed   []string
	scrolled    []string
	onClick     func(pageURL, selector string)
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{pages: map[string]*fakePage{}}
}

func (d *fakeDriver) addPage(url string) *fakePage {
	p := &fakePage{
		visible: map[string]bool{},
		anchors: map[string][]Anchor{},
		html:    map[string]string{},
	}
	d.pages[url] = p
	return p
}

func (d *fakeDriver) page() *fakePage {
	return d.pages[d.current]
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.navigations = append(d.navigations, url)
	if _, ok := d.pages[url]; !ok {
		return fmt.Errorf("no page at %s: %w", url, ErrNotFound)
	}
	d.current = url
	return nil
}

func (d *fakeDriver) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	p := d.page()
	if p == nil {
		return ErrNotFound
	}
	if p.visible[selector] || p.html[selector] != "" || len(p.anchors[selector]) > 0 {
		return nil
	}
	return fmt.Errorf("timed out waiting for %s: %w", selector, ErrNotFound)
}

func (d *fakeDriver) WaitTitleContains(_ context.Context, substr string, _ time.Duration) error {
	p := d.page()
	if p == nil || !strings.Contains(p.title, substr) {
		return fmt.Errorf("title mismatch: %w", ErrNotFound)
	}
	return nil
}

func (d *fakeDriver) Anchors(_ context.Context, selector string) ([]Anchor, error) {
	p := d.page()
	if p == nil {
		return nil, ErrNotFound
	}
	return p.anchors[selector], nil
}

func (d *fakeDriver) OuterHTML(_ context.Context, selector string) (string, error) {
	p := d.page()
	if p == nil || p.html[selector] == "" {
		return "", fmt.Errorf("no HTML for %s: %w", selector, ErrNotFound)
	}
	return p.html[selector], nil
}

func (d *fakeDriver) Click(_ context.Context, selector string, _ time.Duration) error {
	p := d.page()
	if p == nil || !p.visible[selector] {
		return fmt.Errorf("nothing clickable at %s: %w", selector, ErrNotFound)
	}
	d.clicked = append(d.clicked, d.current+" "+selector)
	if d.onClick != nil {
		d.onClick(d.current, selector)
	}
	return nil
}

func (d *fakeDriver) SendKeys(_ context.Context, selector, keys string) error {
	p := d.page()
	if p == nil || !p.visible[selector] {
		return fmt.Errorf("no input at %s: %w", selector, ErrNotFound)
	}
	d.typed = append(d.typed, selector+"="+keys)
	return nil
}

func (d *fakeDriver) ConfirmAnchor(_ context.Context, url string, _ time.Duration) error {
	d.confirmed = append(d.confirmed, url)
	return nil
}

func (d *fakeDriver) ScrollToNth(_ context.Context, selector string, n int) error {
	p := d.page()
	if p == nil || p.headers <= n {
		return fmt.Errorf("fewer than %d matches for %s: %w", n+1, selector, ErrNotFound)
	}
	d.scrolled = append(d.scrolled, fmt.Sprintf("%s[%d]", selector, n))
	return nil
}

func (d *fakeDriver) Sleep(context.Context, time.Duration) error {
	return nil
}

// fakeReporter collects reported records per source URL.
type fakeReporter struct {
	got map[string][]table.Record
}

func newFakeReporter() *fakeReporter {
	return &fakeReporter{got: map[string][]table.Record{}}
}

func (r *fakeReporter) Report(sourceURL string, records []table.Record) error {
	r.got[sourceURL] = records
	return nil
}
