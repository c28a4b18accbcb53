package portal

import (
	"net/url"
	"strings"
)

// Strategy is how a discovered catalog link must be approached.
type Strategy int

const (
	// StrategyDirect links lead to a standalone page whose table renders
	// after a plain navigation.
	StrategyDirect Strategy = iota
	// StrategyIndirect links do not render as full pages; their content is
	// revealed only by an in-place activation on the catalog itself.
	StrategyIndirect
	// StrategyUnsupported links (screeners, promos) are logged and dropped.
	StrategyUnsupported
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyIndirect:
		return "indirect"
	default:
		return "unsupported"
	}
}

const (
	directMarker   = "pick-list"
	indirectMarker = "model-portfolio"
)

// Classify maps a discovered URL to its navigation strategy. The decision
// depends only on the path shape, so it is deterministic and safe to call
// repeatedly on the same input.
func Classify(rawURL string) Strategy {
	u, err := url.Parse(rawURL)
	if err != nil {
		return StrategyUnsupported
	}
	switch {
	case strings.Contains(u.Path, directMarker):
		return StrategyDirect
	case strings.Contains(u.Path, indirectMarker):
		return StrategyIndirect
	default:
		return StrategyUnsupported
	}
}
