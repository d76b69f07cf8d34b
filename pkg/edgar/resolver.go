package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound reports a symbol that neither the ticker table nor the company
// search could resolve. Terminal for that symbol; not worth retrying.
var ErrNotFound = errors.New("no CIK found")

var cikPattern = regexp.MustCompile(`CIK=(\d+)`)

// TickerEntry is one row of EDGAR's bulk company_tickers.json table.
type TickerEntry struct {
	CIKStr int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Resolver maps ticker symbols to CIK identifiers. The bulk ticker table is
// loaded once on first use; symbols it misses fall back to the EDGAR company
// search, whose hits are cached for the rest of the run. The cache lives and
// dies with the Resolver, so independent runs never share state.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	client *Client
	log    *zap.Logger

	loaded  bool
	loadErr error
	cache   map[string]string
}

// NewResolver creates a resolver backed by the given client.
func NewResolver(client *Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client: client,
		log:    logger,
		cache:  make(map[string]string),
	}
}

// NormalizeCIK pads a numeric CIK to the canonical 10-digit form.
func NormalizeCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}

// Resolve maps a symbol to its zero-padded CIK. Symbols are case-insensitive.
// Returns an error wrapping ErrNotFound when the symbol cannot be resolved;
// the underlying cause (missing from the table, search failure) is logged,
// not returned.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (string, error) {
	r.ensureLoaded(ctx)

	key := strings.ToUpper(symbol)
	if cik, ok := r.cache[key]; ok {
		return cik, nil
	}

	cik, err := r.search(ctx, symbol)
	if err != nil {
		r.log.Warn("company search failed", zap.String("symbol", symbol), zap.Error(err))
		return "", fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}

	r.cache[key] = cik
	return cik, nil
}

// LoadErr reports the bulk table load failure, if any. It stays nil after a
// successful load, and before first use. A non-nil value means the resolver
// is running degraded, on search fallbacks alone.
func (r *Resolver) LoadErr() error {
	return r.loadErr
}

// ensureLoaded performs the one-time bulk load of the ticker table. Failure
// degrades to an empty table rather than failing the resolver; the error is
// kept so a degraded run is distinguishable from a table with no entries.
func (r *Resolver) ensureLoaded(ctx context.Context) {
	if r.loaded {
		return
	}
	r.loaded = true

	if err := r.loadTickerTable(ctx); err != nil {
		r.loadErr = err
		r.log.Warn("could not load company ticker table", zap.Error(err))
		return
	}
	r.log.Info("loaded company ticker table", zap.Int("tickers", len(r.cache)))
}

func (r *Resolver) loadTickerTable(ctx context.Context) error {
	body, err := r.client.get(ctx, r.client.BaseURL+"/files/company_tickers.json", metadataTimeout)
	if err != nil {
		return err
	}

	// The table is a JSON object with arbitrary numeric keys; only the
	// values matter.
	var table map[string]TickerEntry
	if err := json.Unmarshal(body, &table); err != nil {
		return fmt.Errorf("failed to parse ticker table: %w", err)
	}

	for _, entry := range table {
		r.cache[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIKStr)
	}
	return nil
}

// search queries the EDGAR company search page and pulls the first CIK out
// of the response body.
func (r *Resolver) search(ctx context.Context, symbol string) (string, error) {
	searchURL := fmt.Sprintf(
		"%s/cgi-bin/browse-edgar?action=getcompany&company=%s&type=&dateb=&owner=exclude&count=100&search_text=&CIK=&myHID=",
		r.client.BaseURL, url.QueryEscape(symbol))

	body, err := r.client.get(ctx, searchURL, metadataTimeout)
	if err != nil {
		return "", err
	}

	match := cikPattern.FindSubmatch(body)
	if match == nil {
		return "", fmt.Errorf("no CIK in search response for %q", symbol)
	}
	return NormalizeCIK(string(match[1])), nil
}
