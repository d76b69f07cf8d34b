// Package edgar talks to the SEC EDGAR endpoints: the bulk company
// ticker table, the company search fallback, the per-company submissions
// index, and the filing archive itself.
package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL serves the ticker table, the company search and the
	// filing archive.
	DefaultBaseURL = "https://www.sec.gov"
	// DefaultSubmissionsURL serves per-company submission histories.
	DefaultSubmissionsURL = "https://data.sec.gov"
)

// DefaultDelay is the minimum spacing between any two requests issued
// through a Client. EDGAR tolerates short bursts, but a long batch run
// should stay well under its fair-access ceiling.
const DefaultDelay = time.Second

const (
	// metadataTimeout bounds lookups, search queries, submissions reads
	// and directory listings.
	metadataTimeout = 10 * time.Second
	// documentTimeout bounds the (much larger) filing document fetch.
	documentTimeout = 15 * time.Second
)

// Client handles communications with the EDGAR endpoints with rate limiting.
// BaseURL and SubmissionsURL are settable so tests can point the client at a
// local server.
type Client struct {
	BaseURL        string
	SubmissionsURL string

	userAgent  string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewClient creates a new EDGAR client. userAgent must identify the caller
// with contact information, as the archive requires on every request. delay
// is the minimum gap between consecutive requests; DefaultDelay is used when
// it is zero or negative.
func NewClient(userAgent string, delay time.Duration) *Client {
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Client{
		BaseURL:        DefaultBaseURL,
		SubmissionsURL: DefaultSubmissionsURL,
		userAgent:      userAgent,
		// A burst of one token turns the limiter into a fixed-interval
		// throttle: the first request goes out immediately, every later
		// one waits out the delay.
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		httpClient: &http.Client{},
	}
}

// get performs a throttled GET and returns the response body. The limiter is
// waited out before the timeout starts, so request spacing is never charged
// against a request's own time budget; a delay longer than the timeout still
// lets every request through.
func (c *Client) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("EDGAR returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

// ArchiveDirURL returns the directory listing URL for one filing. The
// archive addresses filings by CIK without leading zeros and accession
// number without dashes.
func (c *Client) ArchiveDirURL(cik, accessionNumber string) string {
	cikNum := strings.TrimLeft(cik, "0")
	if cikNum == "" {
		cikNum = "0"
	}
	accession := strings.ReplaceAll(accessionNumber, "-", "")

	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/", c.BaseURL, cikNum, accession)
}

// LoadListing fetches the archive directory listing for one filing.
func (c *Client) LoadListing(ctx context.Context, cik, accessionNumber string) ([]byte, error) {
	return c.get(ctx, c.ArchiveDirURL(cik, accessionNumber), metadataTimeout)
}

// LoadDocument fetches a filing document by the href found in a directory
// listing. Rooted paths are resolved against the archive host; anything else
// is assumed to already be a full URL.
func (c *Client) LoadDocument(ctx context.Context, href string) ([]byte, error) {
	url := href
	if strings.HasPrefix(href, "/") {
		url = c.BaseURL + href
	}
	return c.get(ctx, url, documentTimeout)
}
