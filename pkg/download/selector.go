// Package download drives the filing pipeline: selecting filings by time
// window, extracting their documents, and writing the results, one filing at
// a time.
package download

import (
	"github.com/saranrapjs/edgartext/pkg/edgar"
)

// WindowYears is the span of the default rolling selection window.
const WindowYears = 10

// Policy is the time window for one download request. Zero values mean
// unset: no Year and no All selects the rolling window of the WindowYears
// most recent years. Quarter applies to quarterly filings only.
type Policy struct {
	Year    int
	Quarter int
	All     bool
}

// Select filters filings down to the policy's window. Pure, order-preserving.
// A filing matches on its filing date's year; with a quarter set (quarterly
// filings only) it must also land in that quarter, derived from the report
// date. Records with unparsable dates are dropped. currentYear anchors the
// rolling window; callers pass the current UTC year.
func Select(filings []edgar.FilingRecord, form edgar.FilingType, policy Policy, currentYear int) []edgar.FilingRecord {
	if policy.All {
		return filings
	}

	firstYear := currentYear - (WindowYears - 1)
	lastYear := currentYear
	if policy.Year != 0 {
		firstYear = policy.Year
		lastYear = policy.Year
	}

	var matched []edgar.FilingRecord
	for _, filing := range filings {
		year, ok := filing.FilingYear()
		if !ok {
			continue
		}
		if year < firstYear || year > lastYear {
			continue
		}
		if form == edgar.Form10Q && policy.Quarter != 0 {
			quarter, ok := filing.Quarter()
			if !ok || quarter != policy.Quarter {
				continue
			}
		}
		matched = append(matched, filing)
	}
	return matched
}
