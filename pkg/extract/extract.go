package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/saranrapjs/edgartext/pkg/edgar"
)

// MinContentLength is the smallest cleaned document accepted as a successful
// extraction, measured in characters. Anything at or below it means the wrong
// file was picked or the filing is a near-empty placeholder.
const MinContentLength = 5000

var (
	// ErrNoDocument means the filing's directory listing had no usable
	// HTML document at all.
	ErrNoDocument = errors.New("no primary document in filing directory")
	// ErrTooShort means extraction produced too little text to be the
	// real filing body.
	ErrTooShort = errors.New("extracted text below minimum length")
)

// Extractor fetches filing documents through an EDGAR client and cleans them
// down to text.
type Extractor struct {
	client *edgar.Client
	log    *zap.Logger
}

// New creates an extractor backed by the given client.
func New(client *edgar.Client, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, log: logger}
}

// Extract downloads one filing's primary document and returns its cleaned
// text. Failures from the listing fetch, document selection, document fetch,
// parse, or the minimum-length check all come back as errors; none is worth
// retrying within a run.
func (e *Extractor) Extract(ctx context.Context, cik, accessionNumber string) (string, error) {
	listing, err := e.client.LoadListing(ctx, cik, accessionNumber)
	if err != nil {
		return "", fmt.Errorf("failed to fetch filing directory: %w", err)
	}

	href, err := primaryDocument(bytes.NewReader(listing))
	if err != nil {
		return "", err
	}
	e.log.Debug("selected primary document",
		zap.String("accession", accessionNumber),
		zap.String("href", href))

	document, err := e.client.LoadDocument(ctx, href)
	if err != nil {
		return "", fmt.Errorf("failed to fetch primary document: %w", err)
	}

	text, err := Clean(bytes.NewReader(document))
	if err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(text); n <= MinContentLength {
		return "", fmt.Errorf("%w: %d chars from %s", ErrTooShort, n, href)
	}
	return text, nil
}

// primaryDocument picks the main human-readable file out of a filing's
// directory listing. Candidates are archive-hosted .htm links, minus index
// pages and search links. The first candidate that is neither an exhibit nor
// a short R-prefixed viewer page wins; failing that, a file named exactly
// r1.htm (the viewer's rendering of the main document), then the first
// candidate in listing order.
func primaryDocument(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse directory listing: %w", err)
	}

	type candidate struct {
		name string
		href string
	}
	var main string
	var candidates []candidate

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "/Archives/edgar") || !strings.Contains(strings.ToLower(href), ".htm") {
			return
		}

		parts := strings.Split(href, "/")
		name := strings.ToLower(parts[len(parts)-1])
		if strings.Contains(name, "index") || strings.Contains(href, "/search") {
			return
		}
		candidates = append(candidates, candidate{name: name, href: href})

		if main == "" && !strings.Contains(name, "exhibit") && !(strings.HasPrefix(name, "r") && len(name) < 10) {
			main = href
		}
	})

	if main == "" {
		for _, c := range candidates {
			if c.name == "r1.htm" {
				main = c.href
				break
			}
		}
	}
	if main == "" && len(candidates) > 0 {
		main = candidates[0].href
	}
	if main == "" {
		return "", ErrNoDocument
	}
	return main, nil
}
