package portal

import (
	"fmt"
	"net/url"
	"time"

	"github.com/briandowns/spinner"
)

// targetQueue hands out queued indirect targets in document order, showing
// the in-flight target on a terminal spinner. The run is sequential, so a
// single spinner is enough.
type targetQueue struct {
	items []string
	spin  *spinner.Spinner
}

func newTargetQueue(targets []string) *targetQueue {
	return &targetQueue{
		items: targets,
		spin:  spinner.New(spinner.CharSets[9], 100*time.Millisecond),
	}
}

func (q *targetQueue) next() (string, bool) {
	if len(q.items) == 0 {
		q.stop()
		return "", false
	}
	item := q.items[0]
	q.items = q.items[1:]

	q.spin.Suffix = fmt.Sprintf(" revisiting %s", formatSpinnerMessage(item))
	if !q.spin.Active() {
		q.spin.Start()
	}
	return item, true
}

func (q *targetQueue) stop() {
	if q.spin.Active() {
		q.spin.Stop()
	}
}

// formatSpinnerMessage truncates long URLs, keeping the host readable.
func formatSpinnerMessage(urlStr string) string {
	maxLen := 40
	if len(urlStr) <= maxLen {
		return urlStr
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return "..." + urlStr[len(urlStr)-maxLen:]
	}
	domain := u.Host
	path := u.Path
	if keep := maxLen - len(domain) - 3; keep > 0 && len(path) > keep {
		path = "..." + path[len(path)-keep:]
	}
	return domain + path
}
