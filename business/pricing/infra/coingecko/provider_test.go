package coingecko

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestProvider(t *testing.T, handler http.Handler) (*Provider, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RequestsPerMinute = 6000
	cfg.CacheTTL = time.Minute

	p, err := NewProvider(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	return p, srv
}

func TestFetchQuoteSynthesizesSpread(t *testing.T) {
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "ethereum" {
			t.Errorf("ids = %q, want ethereum", got)
		}
		if got := r.URL.Query().Get("vs_currencies"); got != "usd" {
			t.Errorf("vs_currencies = %q, want usd", got)
		}
		fmt.Fprint(w, `{"ethereum":{"usd":2500,"usd_24h_vol":250000000}}`)
	}))

	q, err := p.FetchQuote(context.Background(), domain.MustPair("ETH/USDC"), "")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if q.Venue != "CoinGecko" {
		t.Errorf("Venue = %q", q.Venue)
	}
	if !q.Mid.Equal(dec("2500")) {
		t.Errorf("Mid = %s, want 2500", q.Mid)
	}
	// Default spread assumption 0.05% full width: ±0.025% around mid.
	if !q.Bid.Equal(dec("2499.375")) {
		t.Errorf("Bid = %s, want 2499.375", q.Bid)
	}
	if !q.Ask.Equal(dec("2500.625")) {
		t.Errorf("Ask = %s, want 2500.625", q.Ask)
	}
	// Volume converted from quote units to base units.
	if !q.Volume24h.Equal(dec("100000")) {
		t.Errorf("Volume24h = %s, want 100000", q.Volume24h)
	}
}

func TestFetchQuoteCaches(t *testing.T) {
	var hits atomic.Int64
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"bitcoin":{"usd":67850}}`)
	}))

	ctx := context.Background()
	pair := domain.MustPair("BTC/USDT")

	if _, err := p.FetchQuote(ctx, pair, ""); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := p.FetchQuote(ctx, pair, ""); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (second fetch should be cached)", got)
	}
}

func TestFetchQuoteUnknownToken(t *testing.T) {
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be hit for unmapped tokens")
	}))

	_, err := p.FetchQuote(context.Background(), domain.MustPair("DOGE/USDC"), "")
	if apperror.GetCode(err) != apperror.CodePairNotQuoted {
		t.Errorf("code = %v, want %v", apperror.GetCode(err), apperror.CodePairNotQuoted)
	}
}

func TestFetchQuoteServerError(t *testing.T) {
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := p.FetchQuote(context.Background(), domain.MustPair("ETH/USDC"), "")
	if apperror.GetCode(err) != apperror.CodePriceSourceError {
		t.Errorf("code = %v, want %v", apperror.GetCode(err), apperror.CodePriceSourceError)
	}
}

func TestVenuesFilter(t *testing.T) {
	p, _ := newTestProvider(t, http.NotFoundHandler())

	if got := p.Venues(domain.VenueCEX); len(got) != 1 || got[0] != "coingecko" {
		t.Errorf("Venues(CEX) = %v", got)
	}
	if got := p.Venues(domain.VenueDEX); got != nil {
		t.Errorf("Venues(DEX) = %v, want nil", got)
	}
}
