package download

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/saranrapjs/edgartext/pkg/edgar"
	"github.com/saranrapjs/edgartext/pkg/extract"
	"github.com/saranrapjs/edgartext/pkg/store"
)

// Downloader runs the full pipeline for batches of symbols: resolve, list,
// select, extract, write. Everything is sequential; the client's request
// spacing is the only pacing in the system.
type Downloader struct {
	resolver  *edgar.Resolver
	client    *edgar.Client
	extractor *extract.Extractor
	store     *store.Store
	log       *zap.Logger
	now       func() time.Time
}

// New wires a downloader from an EDGAR client and an output store.
func New(client *edgar.Client, st *store.Store, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		resolver:  edgar.NewResolver(client, logger),
		client:    client,
		extractor: extract.New(client, logger),
		store:     st,
		log:       logger,
		now:       time.Now,
	}
}

// Results maps a download unit key (symbol and form, plus a year or the
// "all" marker when the request had one) to whether every selected filing
// in that unit was written.
type Results map[string]bool

// Key builds the unit key: SYM-10-K-2022, SYM-10-K-all, or SYM-10-K for the
// default window.
func Key(symbol string, form edgar.FilingType, year int, all bool) string {
	switch {
	case all:
		return fmt.Sprintf("%s-%s-all", symbol, form)
	case year != 0:
		return fmt.Sprintf("%s-%s-%d", symbol, form, year)
	default:
		return fmt.Sprintf("%s-%s", symbol, form)
	}
}

// Keys returns the unit keys in sorted order, for stable summaries.
func (r Results) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Succeeded counts the units whose every filing was written.
func (r Results) Succeeded() int {
	n := 0
	for _, ok := range r {
		if ok {
			n++
		}
	}
	return n
}

// Failed counts the units with at least one failure.
func (r Results) Failed() int {
	return len(r) - r.Succeeded()
}

// DownloadFilings runs one unit: resolve the symbol, read and select its
// filings of one form, then extract and write each selected filing. Returns
// true only if every selected filing was written. All failures are absorbed
// and logged here; a failing unit never disturbs its siblings.
func (d *Downloader) DownloadFilings(ctx context.Context, symbol string, form edgar.FilingType, policy Policy) bool {
	if !form.Valid() {
		d.log.Error("unsupported filing type", zap.String("form", string(form)))
		return false
	}
	if policy.Quarter != 0 && (policy.Quarter < 1 || policy.Quarter > 4) {
		d.log.Error("quarter out of range", zap.Int("quarter", policy.Quarter))
		return false
	}

	cik, err := d.resolver.Resolve(ctx, symbol)
	if err != nil {
		d.log.Error("could not resolve symbol", zap.String("symbol", symbol), zap.Error(err))
		return false
	}
	d.log.Info("processing filings",
		zap.String("symbol", symbol),
		zap.String("form", string(form)),
		zap.String("cik", cik))

	list := d.client.LoadFilings(ctx, cik, form)
	if list.Err != nil {
		// Treated like an empty index, but worth telling apart in the log.
		d.log.Warn("filing index unavailable", zap.String("cik", cik), zap.Error(list.Err))
	}
	if len(list.Records) == 0 {
		d.log.Warn("no filings found",
			zap.String("symbol", symbol),
			zap.String("form", string(form)))
		return false
	}

	matched := Select(list.Records, form, policy, d.now().UTC().Year())
	if len(matched) == 0 {
		d.log.Warn("no filings match the requested window",
			zap.String("symbol", symbol),
			zap.String("form", string(form)),
			zap.Int("available", len(list.Records)))
		return false
	}
	d.log.Info("selected filings", zap.String("symbol", symbol), zap.Int("count", len(matched)))

	ok := true
	for _, filing := range matched {
		d.log.Info("downloading filing",
			zap.String("accession", filing.AccessionNumber),
			zap.String("filed", filing.FilingDate))

		text, err := d.extractor.Extract(ctx, cik, filing.AccessionNumber)
		if err != nil {
			d.log.Error("extraction failed",
				zap.String("accession", filing.AccessionNumber),
				zap.Error(err))
			ok = false
			continue
		}

		if _, err := d.store.Write(symbol, filing, text); err != nil {
			d.log.Error("write failed",
				zap.String("accession", filing.AccessionNumber),
				zap.Error(err))
			ok = false
		}
	}
	return ok
}

// Batch runs one unit per symbol × form combination. With all set, a unit
// covers the full filing history; with years given, one unit per year;
// otherwise a single unit with the default rolling window. A non-positive
// year is recorded as a failed unit without any network work.
func (d *Downloader) Batch(ctx context.Context, symbols []string, forms []edgar.FilingType, years []int, all bool) Results {
	results := make(Results)
	for _, symbol := range symbols {
		for _, form := range forms {
			switch {
			case all:
				results[Key(symbol, form, 0, true)] = d.DownloadFilings(ctx, symbol, form, Policy{All: true})
			case len(years) > 0:
				for _, year := range years {
					// Zero is Policy's unset sentinel; an explicit
					// non-positive year gets its own failed unit rather
					// than falling through to the default window.
					if year <= 0 {
						d.log.Error("filing year out of range",
							zap.String("symbol", symbol),
							zap.Int("year", year))
						results[fmt.Sprintf("%s-%s-%d", symbol, form, year)] = false
						continue
					}
					results[Key(symbol, form, year, false)] = d.DownloadFilings(ctx, symbol, form, Policy{Year: year})
				}
			default:
				results[Key(symbol, form, 0, false)] = d.DownloadFilings(ctx, symbol, form, Policy{})
			}
		}
	}
	return results
}
