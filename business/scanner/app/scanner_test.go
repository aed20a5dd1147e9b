package app

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	pricingapp "github.com/fd1az/arb-finder/business/pricing/app"
	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/internal/logger"
)

type bookSource struct {
	// venue -> bid/ask
	book map[string][2]string
}

func (s *bookSource) Name() string { return "book" }

func (s *bookSource) Venues(t pricing.VenueType) []string {
	out := make([]string, 0, len(s.book))
	for v := range s.book {
		out = append(out, v)
	}
	return out
}

func (s *bookSource) FetchQuote(ctx context.Context, pair pricing.Pair, v string) (*pricing.Quote, error) {
	entry := s.book[v]
	return pricing.NewQuote(v, pricing.VenueCEX, pair,
		decimal.RequireFromString(entry[0]), decimal.RequireFromString(entry[1]),
		decimal.NewFromInt(100_000), "")
}

func newTestScanner(t *testing.T, src pricingapp.Source, minProfit float64) *Scanner {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	prices := pricingapp.NewPriceService(src, nil, log)
	s, err := NewScanner(prices, newTestEvaluator(), Config{MinProfitPct: minProfit}, log)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	return s
}

func TestScanRanksOpportunitiesDescending(t *testing.T) {
	src := &bookSource{book: map[string][2]string{
		"alpha": {"2500.00", "2501.00"},
		"beta":  {"2550.00", "2551.00"},
		"gamma": {"2600.00", "2601.00"},
	}}
	s := newTestScanner(t, src, 0)

	result, err := s.Scan(context.Background(), pricing.MustPair("ETH/USDC"), pricingapp.FetchOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(result.Opportunities) == 0 {
		t.Fatal("expected opportunities across 100-point spreads")
	}
	for i := 1; i < len(result.Opportunities); i++ {
		if result.Opportunities[i].NetSpreadPct > result.Opportunities[i-1].NetSpreadPct {
			t.Fatal("opportunities not sorted descending by net spread")
		}
	}
	if result.Best != result.Opportunities[0] {
		t.Error("Best must be the top-ranked opportunity")
	}
	// Best trade buys the cheapest ask and sells the richest bid.
	if result.Best.BuyVenue != "alpha" || result.Best.SellVenue != "gamma" {
		t.Errorf("best = buy %s sell %s, want buy alpha sell gamma",
			result.Best.BuyVenue, result.Best.SellVenue)
	}
}

func TestScanExcludesSameVenue(t *testing.T) {
	src := &bookSource{book: map[string][2]string{
		"alpha": {"2500.00", "2501.00"},
		"beta":  {"2550.00", "2551.00"},
	}}
	s := newTestScanner(t, src, -1000)

	result, err := s.Scan(context.Background(), pricing.MustPair("ETH/USDC"), pricingapp.FetchOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, opp := range result.Opportunities {
		if opp.BuyVenue == opp.SellVenue {
			t.Errorf("same-venue opportunity %s -> %s", opp.BuyVenue, opp.SellVenue)
		}
	}
}

func TestScanMinProfitFilter(t *testing.T) {
	src := &bookSource{book: map[string][2]string{
		"alpha": {"2500.00", "2501.00"},
		"beta":  {"2502.00", "2503.00"}, // ~0.04% gross, negative net
	}}

	s := newTestScanner(t, src, 0.5)
	result, err := s.Scan(context.Background(), pricing.MustPair("ETH/USDC"), pricingapp.FetchOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Opportunities) != 0 {
		t.Errorf("got %d opportunities, want 0 below threshold", len(result.Opportunities))
	}
	if result.Best != nil {
		t.Error("Best must be nil when nothing passes the filter")
	}
}

func TestScanFewerThanTwoQuotes(t *testing.T) {
	src := &bookSource{book: map[string][2]string{
		"alpha": {"2500.00", "2501.00"},
	}}
	s := newTestScanner(t, src, 0)

	result, err := s.Scan(context.Background(), pricing.MustPair("ETH/USDC"), pricingapp.FetchOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Quotes) != 1 || len(result.Opportunities) != 0 || result.Best != nil {
		t.Error("single-quote scan must return an empty result, not an error")
	}
}

func TestScanPairs(t *testing.T) {
	src := &bookSource{book: map[string][2]string{
		"alpha": {"2500.00", "2501.00"},
		"beta":  {"2550.00", "2551.00"},
	}}
	s := newTestScanner(t, src, 0)

	pairs := []pricing.Pair{pricing.MustPair("ETH/USDC"), pricing.MustPair("BTC/USDC")}
	results, err := s.ScanPairs(context.Background(), pairs, pricingapp.FetchOptions{})
	if err != nil {
		t.Fatalf("ScanPairs: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.Pair != pairs[i] {
			t.Errorf("results[%d].Pair = %s, want %s", i, r.Pair, pairs[i])
		}
	}
}
