package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// FilingType identifies the filing categories the downloader handles.
type FilingType string

const (
	Form10K FilingType = "10-K"
	Form10Q FilingType = "10-Q"
)

// Valid reports whether this is a supported filing type.
func (t FilingType) Valid() bool {
	return t == Form10K || t == Form10Q
}

// FilingRecord is one filing from a company's submission history. Dates keep
// the index's YYYY-MM-DD string form; the accessors parse them positionally,
// and callers drop a record whose date turns out to be unusable at the point
// the date is needed.
type FilingRecord struct {
	AccessionNumber string
	FilingDate      string
	ReportDate      string
	Form            string
}

// FilingYear parses the year the filing was submitted.
func (f FilingRecord) FilingYear() (int, bool) {
	if len(f.FilingDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(f.FilingDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// Quarter derives the fiscal quarter from the report date's month. Filings
// with a report date misaligned to quarter boundaries (53-week fiscal years)
// still get the plain month bucket.
func (f FilingRecord) Quarter() (int, bool) {
	if len(f.ReportDate) < 7 {
		return 0, false
	}
	month, err := strconv.Atoi(f.ReportDate[5:7])
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}
	return QuarterOfMonth(month), true
}

// QuarterOfMonth buckets a calendar month into its quarter.
func QuarterOfMonth(month int) int {
	return (month-1)/3 + 1
}

// Submissions is the per-company submission history returned by the EDGAR
// submissions endpoint.
type Submissions struct {
	CIK     string  `json:"cik"`
	Name    string  `json:"name"`
	Filings Filings `json:"filings"`
}

// Filings holds the "recent" window of a company's filing history in the
// endpoint's parallel-array form. Positions line up across the arrays; use
// Records rather than indexing these directly, so the positional coupling
// stays contained here. Older filings live in separate paginated files the
// endpoint references, which this package does not read.
type Filings struct {
	Recent struct {
		AccessionNumber []string `json:"accessionNumber"`
		FilingDate      []string `json:"filingDate"`
		ReportDate      []string `json:"reportDate"`
		Form            []string `json:"form"`
	} `json:"recent"`
}

// Records converts the parallel arrays into FilingRecords for one form type,
// in index order. A position missing from any of the arrays is skipped.
func (f Filings) Records(form FilingType) []FilingRecord {
	var records []FilingRecord
	for i, name := range f.Recent.Form {
		if name != string(form) {
			continue
		}
		if i >= len(f.Recent.AccessionNumber) || i >= len(f.Recent.FilingDate) || i >= len(f.Recent.ReportDate) {
			continue
		}
		records = append(records, FilingRecord{
			AccessionNumber: f.Recent.AccessionNumber[i],
			FilingDate:      f.Recent.FilingDate[i],
			ReportDate:      f.Recent.ReportDate[i],
			Form:            name,
		})
	}
	return records
}

// FilingList is the outcome of reading a company's filing index. Err is
// non-nil when the index could not be fetched or decoded, with Records empty.
// Control flow treats that the same as a genuinely empty index; diagnostics
// should not.
type FilingList struct {
	Records []FilingRecord
	Err     error
}

// LoadSubmissions fetches and parses the submission history for a CIK.
func (c *Client) LoadSubmissions(ctx context.Context, cik string) (*Submissions, error) {
	url := fmt.Sprintf("%s/submissions/CIK%010s.json", c.SubmissionsURL, cik)

	body, err := c.get(ctx, url, metadataTimeout)
	if err != nil {
		return nil, err
	}

	var submissions Submissions
	if err := json.Unmarshal(body, &submissions); err != nil {
		return nil, fmt.Errorf("failed to parse submissions for CIK %s: %w", cik, err)
	}
	return &submissions, nil
}

// LoadFilings reads the recent filing index for one CIK and form type.
// Transport and decode failures degrade to an empty list with Err set.
func (c *Client) LoadFilings(ctx context.Context, cik string, form FilingType) FilingList {
	submissions, err := c.LoadSubmissions(ctx, cik)
	if err != nil {
		return FilingList{Err: err}
	}
	return FilingList{Records: submissions.Filings.Records(form)}
}
