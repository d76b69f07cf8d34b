package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tickerTableJSON = `{
	"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
	"1": {"cik_str": 789019, "ticker": "MSFT", "title": "Microsoft Corp"}
}`

func newTestResolver(t *testing.T, handler http.Handler) *Resolver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test", time.Millisecond)
	client.BaseURL = server.URL
	client.SubmissionsURL = server.URL
	return NewResolver(client, zap.NewNop())
}

func TestResolveFromBulkTable(t *testing.T) {
	resolver := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/company_tickers.json" {
			w.Write([]byte(tickerTableJSON))
			return
		}
		http.NotFound(w, r)
	}))

	cik, err := resolver.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", cik)

	// Symbols are case-insensitive.
	cik, err = resolver.Resolve(context.Background(), "msft")
	require.NoError(t, err)
	assert.Equal(t, "0000789019", cik)

	assert.NoError(t, resolver.LoadErr())
}

func TestResolveSearchFallback(t *testing.T) {
	searchCalls := 0
	resolver := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/company_tickers.json":
			http.Error(w, "unavailable", http.StatusInternalServerError)
		case "/cgi-bin/browse-edgar":
			searchCalls++
			w.Write([]byte(`<a href="/cgi-bin/browse-edgar?action=getcompany&CIK=0001018724&type=10-K">AMAZON COM INC</a>`))
		default:
			http.NotFound(w, r)
		}
	}))

	cik, err := resolver.Resolve(context.Background(), "AMZN")
	require.NoError(t, err)
	assert.Equal(t, "0001018724", cik)

	// The degraded bulk load is remembered for diagnostics.
	assert.Error(t, resolver.LoadErr())

	// A second lookup comes from the cache, not another search.
	cik, err = resolver.Resolve(context.Background(), "amzn")
	require.NoError(t, err)
	assert.Equal(t, "0001018724", cik)
	assert.Equal(t, 1, searchCalls)
}

func TestResolveNotFound(t *testing.T) {
	resolver := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/company_tickers.json":
			w.Write([]byte(tickerTableJSON))
		case "/cgi-bin/browse-edgar":
			w.Write([]byte(`<html><body>No matching companies.</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))

	_, err := resolver.Resolve(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveNotFoundWhenEverythingFails(t *testing.T) {
	resolver := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	_, err := resolver.Resolve(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, resolver.LoadErr())
}

func TestNormalizeCIK(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"320193", "0000320193"},
		{"0000320193", "0000320193"},
		{"1018724", "0001018724"},
		{"0", "0000000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeCIK(tt.in), "input %q", tt.in)
	}
}
