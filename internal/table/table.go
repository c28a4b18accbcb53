// Package table extracts filtered, column-projected records from rendered
// HTML table regions. It operates on a captured HTML fragment, so it never
// touches browser state and can run against literal strings in tests.
package table

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterPolicy decides what a filter rule does when its column is missing
// from a page's header row.
type FilterPolicy int

const (
	// FailOpen lets every row pass a filter whose column is absent.
	FailOpen FilterPolicy = iota
	// FailClosed rejects every row when a filter's column is absent.
	FailClosed
)

// Record maps a wanted column label to its trimmed cell text for one row.
type Record map[string]string

// Options controls which columns are kept and which rows survive.
type Options struct {
	// Wanted is the set of column labels projected into each record.
	Wanted map[string]bool
	// Filters maps a column label to the set of accepted cell values.
	Filters map[string]map[string]bool
	// Policy applies when a filter's column is not present in the header.
	Policy FilterPolicy
}

// Extract parses a table container fragment and returns the records that
// pass every filter, projected onto the wanted columns. Row order follows
// document order, across and within row groups. Rows whose cell count does
// not match the header are skipped; they are expected (subtotals, partial
// renders) and not worth a diagnostic.
func Extract(regionHTML string, opts Options) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(regionHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing table region: %w", err)
	}

	headers := doc.Find("thead th")
	if headers.Length() == 0 {
		return nil, fmt.Errorf("table region has no header cells")
	}

	// Column position is the join key between labels and data cells. It is
	// recomputed on every call because the portal does not keep column order
	// stable across pages or revisits.
	wantedIndex := make(map[string]int)
	filterIndex := make(map[int]string)
	headers.Each(func(i int, th *goquery.Selection) {
		label := strings.TrimSpace(th.Text())
		if opts.Wanted[label] {
			wantedIndex[label] = i
		}
		if _, ok := opts.Filters[label]; ok {
			filterIndex[i] = label
		}
	})

	if opts.Policy == FailClosed && len(filterIndex) < len(opts.Filters) {
		// A filter we cannot evaluate rejects everything.
		return nil, nil
	}

	headerCount := headers.Length()
	var records []Record
	doc.Find("tbody").Each(func(_ int, tbody *goquery.Selection) {
		tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() != headerCount {
				return
			}
			for idx, label := range filterIndex {
				value := strings.TrimSpace(cells.Eq(idx).Text())
				if !opts.Filters[label][value] {
					return
				}
			}
			rec := make(Record, len(wantedIndex))
			for label, idx := range wantedIndex {
				rec[label] = strings.TrimSpace(cells.Eq(idx).Text())
			}
			records = append(records, rec)
		})
	})

	return records, nil
}
