package portal

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// The portal reveals model-portfolio content only through a client-side
// activation on the catalog page; navigating straight to the URL renders
// nothing extractable. Each queued target therefore gets a fresh pass:
// reload the catalog, restore a known layout, find the card again by exact
// URL (element handles do not survive re-renders), and confirm it with the
// keyboard.

// revisitState names the milestones of one reveal pass.
type revisitState int

const (
	atCatalogRoot revisitState = iota
	panelCollapsed
	headerInView
	cardActivated
	detailRevealed
)

func (s revisitState) String() string {
	switch s {
	case atCatalogRoot:
		return "at-catalog-root"
	case panelCollapsed:
		return "panel-collapsed"
	case headerInView:
		return "header-in-view"
	case cardActivated:
		return "card-activated"
	case detailRevealed:
		return "detail-revealed"
	default:
		return "unknown"
	}
}

// transition moves the reveal one state forward. Best-effort transitions
// may fail without skipping the target; every other failure is an edge
// straight to "skip target".
type transition struct {
	to         revisitState
	bestEffort bool
	run        func(ctx context.Context) error
}

// revisit works through the queued indirect targets one at a time. A
// failed target is logged and skipped; the batch always attempts every
// entry.
func (c *Crawler) revisit(ctx context.Context, catalogURL string, targets []string) {
	if len(targets) == 0 {
		return
	}
	log.Info("revisiting indirect targets", "catalog", catalogURL, "queued", len(targets))

	q := newTargetQueue(targets)
	defer q.stop()
	for {
		target, ok := q.next()
		if !ok {
			return
		}
		if err := c.revealAndExtract(ctx, catalogURL, target); err != nil {
			log.Warn("skipping indirect target", "url", target, "error", err)
		}
	}
}

func (c *Crawler) revealAndExtract(ctx context.Context, catalogURL, target string) error {
	for _, tr := range c.revealTransitions(catalogURL, target) {
		if err := tr.run(ctx); err != nil {
			if tr.bestEffort {
				log.Debug("layout restore step failed, continuing",
					"state", tr.to, "url", target, "error", err)
				continue
			}
			return fmt.Errorf("%s: %w", tr.to, err)
		}
	}
	return nil
}

func (c *Crawler) revealTransitions(catalogURL, target string) []transition {
	return []transition{
		{to: atCatalogRoot, run: func(ctx context.Context) error {
			if err := c.d.Navigate(ctx, catalogURL); err != nil {
				return err
			}
			return c.d.WaitVisible(ctx, selSectionHeader, c.opts.PageTimeout)
		}},
		// The side panel obstructs later cards; closing it is helpful but
		// not required.
		{to: panelCollapsed, bestEffort: true, run: func(ctx context.Context) error {
			return c.d.Click(ctx, selPanelToggle, c.opts.PageTimeout)
		}},
		// Bring the second section header into the viewport so the card's
		// activation element is interactable. Pages with a single section
		// skip the scroll.
		{to: headerInView, bestEffort: true, run: func(ctx context.Context) error {
			return c.d.ScrollToNth(ctx, selSectionHeader, 1)
		}},
		{to: cardActivated, run: func(ctx context.Context) error {
			if err := c.d.Sleep(ctx, c.opts.SettleDelay); err != nil {
				return err
			}
			// Cards re-render with new internal identifiers on every load;
			// only an exact URL match re-establishes identity.
			cards, err := c.d.Anchors(ctx, selCardTitle)
			if err != nil {
				return err
			}
			for _, card := range cards {
				if card.URL == target {
					return c.d.ConfirmAnchor(ctx, target, c.opts.PageTimeout)
				}
			}
			return fmt.Errorf("no card links to %s among %d cards: %w",
				target, len(cards), ErrNotFound)
		}},
		{to: detailRevealed, run: func(ctx context.Context) error {
			if err := c.d.WaitVisible(ctx, selPortfolioTable, c.opts.PageTimeout); err != nil {
				return err
			}
			return c.extractRegion(ctx, target, selPortfolioTable)
		}},
	}
}
