package app

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/business/scanner/domain"
	"github.com/fd1az/arb-finder/internal/venue"
)

func mkQuote(t *testing.T, venueName string, vt pricing.VenueType, bid, ask, volume string) *pricing.Quote {
	t.Helper()
	q, err := pricing.NewQuote(venueName, vt, pricing.MustPair("ETH/USDC"),
		decimal.RequireFromString(bid), decimal.RequireFromString(ask),
		decimal.RequireFromString(volume), "")
	if err != nil {
		t.Fatalf("NewQuote(%s): %v", venueName, err)
	}
	return q
}

func newTestEvaluator() *Evaluator {
	return NewEvaluator(venue.DefaultRegistry(), GasParams{PriceGwei: 30, ETHPriceUSD: 2500})
}

func TestEvaluateNonPositiveSpreadReturnsNil(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name     string
		sellBid  string
		buyAsk   string
	}{
		{"sell below buy", "2540.00", "2541.50"},
		{"sell equals buy", "2541.50", "2541.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy := mkQuote(t, "binance", pricing.VenueCEX, "2540.00", tt.buyAsk, "100000")
			sell := mkQuote(t, "kraken", pricing.VenueCEX, tt.sellBid, "2545.00", "100000")
			if opp := e.Evaluate(buy, sell); opp != nil {
				t.Errorf("expected nil, got net spread %f", opp.NetSpreadPct)
			}
		})
	}
}

// Binance/Coinbase ETH/USDC: a thin 0.09% gross spread that coinbase's
// 0.6% taker fee erases entirely.
func TestEvaluateBinanceCoinbaseScenario(t *testing.T) {
	e := newTestEvaluator()

	buy := mkQuote(t, "Binance", pricing.VenueCEX, "2541.20", "2541.50", "125000")
	sell := mkQuote(t, "Coinbase", pricing.VenueCEX, "2543.80", "2544.10", "45000")

	opp := e.Evaluate(buy, sell)
	if opp == nil {
		t.Fatal("expected an opportunity for positive gross spread")
	}

	if math.Abs(opp.GrossSpreadPct-0.0906) > 0.001 {
		t.Errorf("GrossSpreadPct = %f, want ~0.0906", opp.GrossSpreadPct)
	}
	if opp.NetSpreadPct >= 0 {
		t.Errorf("NetSpreadPct = %f, want negative (fees dominate)", opp.NetSpreadPct)
	}
	if opp.IsProfitable() {
		t.Error("opportunity should not be profitable")
	}
	if opp.BuyFeePct != 0.1 || opp.SellFeePct != 0.6 {
		t.Errorf("fees = %.2f%%/%.2f%%, want 0.10%%/0.60%%", opp.BuyFeePct, opp.SellFeePct)
	}
	if opp.EstimatedGasUSD != 0 {
		t.Errorf("EstimatedGasUSD = %f, want 0 for CEX-CEX", opp.EstimatedGasUSD)
	}
}

func TestEvaluateNetSignMatchesProfitability(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name    string
		sellBid string
	}{
		{"wide spread", "2600.00"},
		{"thin spread", "2542.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy := mkQuote(t, "binance", pricing.VenueCEX, "2541.20", "2541.50", "125000")
			sell := mkQuote(t, "kraken", pricing.VenueCEX, tt.sellBid, "2601.00", "100000")

			opp := e.Evaluate(buy, sell)
			if opp == nil {
				t.Fatal("expected an opportunity")
			}
			if opp.IsProfitable() != (opp.NetProfitPerUnit.IsPositive()) {
				t.Error("IsProfitable must match net profit sign")
			}
			if (opp.NetSpreadPct > 0) != opp.NetProfitPerUnit.IsPositive() {
				t.Error("NetSpreadPct sign must match NetProfitPerUnit sign")
			}
		})
	}
}

func TestEvaluateUnknownVenueUsesDefaultFee(t *testing.T) {
	e := newTestEvaluator()

	buy := mkQuote(t, "newdex", pricing.VenueCEX, "2540.00", "2541.00", "50000")
	sell := mkQuote(t, "otherdex", pricing.VenueCEX, "2560.00", "2561.00", "50000")

	opp := e.Evaluate(buy, sell)
	if opp == nil {
		t.Fatal("expected an opportunity")
	}
	if opp.BuyFeePct != 0.1 || opp.SellFeePct != 0.1 {
		t.Errorf("unknown venue fees = %f/%f, want default 0.1/0.1", opp.BuyFeePct, opp.SellFeePct)
	}
}

func TestEvaluateDEXLegsAccrueGas(t *testing.T) {
	e := newTestEvaluator()

	buy := mkQuote(t, "Uniswap V3", pricing.VenueDEX, "2542.10", "2542.80", "85000")
	sell := mkQuote(t, "Coinbase", pricing.VenueCEX, "2543.80", "2544.10", "45000")

	opp := e.Evaluate(buy, sell)
	if opp == nil {
		t.Fatal("expected an opportunity")
	}

	// 150000 units * 30 gwei * 1e-9 * $2500
	want := 11.25
	if math.Abs(opp.EstimatedGasUSD-want) > 1e-9 {
		t.Errorf("EstimatedGasUSD = %f, want %f", opp.EstimatedGasUSD, want)
	}

	foundBuyNote := false
	for _, n := range opp.Notes {
		if n == "Buy requires on-chain tx (~$11.25 gas)" {
			foundBuyNote = true
		}
	}
	if !foundBuyNote {
		t.Errorf("missing DEX buy note, got %v", opp.Notes)
	}

	// Both legs DEX doubles the estimate (different venues, both 150k).
	sellDex := mkQuote(t, "sushiswap", pricing.VenueDEX, "2560.50", "2561.30", "22000")
	opp = e.Evaluate(buy, sellDex)
	if opp == nil {
		t.Fatal("expected an opportunity")
	}
	if math.Abs(opp.EstimatedGasUSD-22.5) > 1e-9 {
		t.Errorf("EstimatedGasUSD = %f, want 22.5 for two DEX legs", opp.EstimatedGasUSD)
	}
}

func TestEvaluateStaleQuoteNote(t *testing.T) {
	e := newTestEvaluator()

	buy := mkQuote(t, "binance", pricing.VenueCEX, "2541.20", "2541.50", "125000")
	sell := mkQuote(t, "kraken", pricing.VenueCEX, "2560.00", "2561.00", "100000")
	sell.Timestamp = time.Now().Add(-time.Minute)

	opp := e.Evaluate(buy, sell)
	if opp == nil {
		t.Fatal("expected an opportunity")
	}

	found := false
	for _, n := range opp.Notes {
		if n == "Warning: Price data may be stale" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing staleness note, got %v", opp.Notes)
	}
}

func riskRank(l domain.RiskLevel) int {
	switch l {
	case domain.RiskLow:
		return 0
	case domain.RiskMedium:
		return 1
	case domain.RiskHigh:
		return 2
	default:
		return 3
	}
}

// Worsening any single risk input must never lower the bucket.
func TestRiskMonotonicity(t *testing.T) {
	e := newTestEvaluator()

	baseline := func() (*pricing.Quote, *pricing.Quote) {
		buy := mkQuote(t, "binance", pricing.VenueCEX, "2541.20", "2541.50", "125000")
		sell := mkQuote(t, "kraken", pricing.VenueCEX, "2545.00", "2546.00", "100000")
		return buy, sell
	}

	buy, sell := baseline()
	base := e.Evaluate(buy, sell)
	if base == nil {
		t.Fatal("baseline must produce an opportunity")
	}

	worsen := []struct {
		name  string
		apply func(buy, sell *pricing.Quote)
	}{
		{"stale buy leg", func(b, s *pricing.Quote) { b.Timestamp = time.Now().Add(-20 * time.Second) }},
		{"stale both legs", func(b, s *pricing.Quote) {
			b.Timestamp = time.Now().Add(-20 * time.Second)
			s.Timestamp = time.Now().Add(-20 * time.Second)
		}},
		{"dex buy leg", func(b, s *pricing.Quote) { b.VenueType = pricing.VenueDEX }},
		{"low volume", func(b, s *pricing.Quote) { s.Volume24h = decimal.NewFromInt(500) }},
		{"suspicious spread", func(b, s *pricing.Quote) { s.Bid = decimal.RequireFromString("2700.00"); s.Ask = decimal.RequireFromString("2701.00") }},
	}

	for _, w := range worsen {
		t.Run(w.name, func(t *testing.T) {
			buy, sell := baseline()
			w.apply(buy, sell)
			opp := e.Evaluate(buy, sell)
			if opp == nil {
				t.Fatal("expected an opportunity")
			}
			if riskRank(opp.Risk) < riskRank(base.Risk) {
				t.Errorf("risk dropped from %s to %s after %s", base.Risk, opp.Risk, w.name)
			}
		})
	}
}

func TestProfitForAmount(t *testing.T) {
	e := newTestEvaluator()

	buy := mkQuote(t, "binance", pricing.VenueCEX, "2541.20", "2541.50", "125000")
	sell := mkQuote(t, "kraken", pricing.VenueCEX, "2600.00", "2601.00", "100000")

	opp := e.Evaluate(buy, sell)
	if opp == nil {
		t.Fatal("expected an opportunity")
	}

	ten := decimal.NewFromInt(10)
	want := ten.Mul(opp.NetProfitPerUnit).Div(opp.BuyPrice)
	if !opp.ProfitForAmount(ten).Equal(want) {
		t.Errorf("ProfitForAmount(10) = %s, want %s", opp.ProfitForAmount(ten), want)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	e := newTestEvaluator()
	buy, _ := pricing.NewQuote("binance", pricing.VenueCEX, pricing.MustPair("ETH/USDC"),
		decimal.RequireFromString("2541.20"), decimal.RequireFromString("2541.50"),
		decimal.NewFromInt(125000), "")
	sell, _ := pricing.NewQuote("coinbase", pricing.VenueCEX, pricing.MustPair("ETH/USDC"),
		decimal.RequireFromString("2543.80"), decimal.RequireFromString("2544.10"),
		decimal.NewFromInt(45000), "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(buy, sell)
	}
}
