package infra

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	profitdomain "github.com/fd1az/arb-finder/business/profit/domain"
	scandomain "github.com/fd1az/arb-finder/business/scanner/domain"
	tridomain "github.com/fd1az/arb-finder/business/triangular/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleOpportunity() *scandomain.Opportunity {
	return &scandomain.Opportunity{
		Type:               scandomain.TypeDirect,
		Pair:               pricing.Pair{Base: "ETH", Quote: "USDC"},
		BuyVenue:           "Kraken",
		SellVenue:          "Binance",
		BuyVenueType:       pricing.VenueCEX,
		SellVenueType:      pricing.VenueCEX,
		BuyPrice:           dec("2500.00"),
		SellPrice:          dec("2512.50"),
		GrossSpreadPct:     0.5,
		NetSpreadPct:       0.24,
		GrossProfitPerUnit: dec("12.50"),
		NetProfitPerUnit:   dec("6.00"),
		BuyFeePct:          0.16,
		SellFeePct:         0.10,
		Risk:               scandomain.RiskLow,
		Notes:              []string{"CEX to CEX transfer delay"},
	}
}

func sampleScanResult(t *testing.T) *scandomain.ScanResult {
	t.Helper()

	pair := pricing.Pair{Base: "ETH", Quote: "USDC"}
	q1, err := pricing.NewQuote("Binance", pricing.VenueCEX, pair,
		dec("2512.50"), dec("2513.00"), dec("1000"), "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	q2, err := pricing.NewQuote("Kraken", pricing.VenueCEX, pair,
		dec("2499.00"), dec("2500.00"), dec("800"), "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	opp := sampleOpportunity()
	return &scandomain.ScanResult{
		Pair:          pair,
		Quotes:        []*pricing.Quote{q2, q1},
		Opportunities: []*scandomain.Opportunity{opp},
		Best:          opp,
		Timestamp:     time.Now(),
	}
}

func TestConsoleScanResult(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	r.PrintScanResult(sampleScanResult(t))

	out := buf.String()
	for _, want := range []string{
		"ARBITRAGE SCAN RESULTS",
		"Pair: ETH/USDC",
		"Venues scanned: 2",
		"Opportunities found: 1",
		"CURRENT PRICES",
		"OPPORTUNITIES",
		"BEST OPPORTUNITY",
		"Buy on Kraken at $2500.00",
		"Sell on Binance at $2512.50",
		"+0.5000%",
		"+0.2400%",
		"PROFITABLE - consider execution",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	// The higher bid should be listed first.
	if strings.Index(out, "Binance") > strings.Index(out, "Kraken") {
		t.Error("price table not sorted by bid descending")
	}
}

func TestConsoleScanResultEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	r.PrintScanResult(&scandomain.ScanResult{
		Pair:      pricing.Pair{Base: "ETH", Quote: "USDC"},
		Timestamp: time.Now(),
	})

	if !strings.Contains(buf.String(), "No profitable opportunities found") {
		t.Errorf("expected efficient-market message, got:\n%s", buf.String())
	}
}

func TestConsoleOpportunityNotProfitable(t *testing.T) {
	opp := sampleOpportunity()
	opp.NetProfitPerUnit = dec("-1.50")
	opp.NetSpreadPct = -0.06

	var buf bytes.Buffer
	NewConsoleReporter(&buf).PrintOpportunity(opp)

	if !strings.Contains(buf.String(), "NOT PROFITABLE after fees") {
		t.Errorf("expected not-profitable verdict, got:\n%s", buf.String())
	}
}

func TestConsoleTriangularPaths(t *testing.T) {
	paths := []*tridomain.Path{
		{
			Tokens:         []string{"USDT", "BTC", "ETH", "USDT"},
			GrossProfitPct: 0.85,
			TotalFeesPct:   0.30,
			NetProfitPct:   0.55,
			Venue:          "binance",
			ExecutionSteps: []string{
				"Buy BTC with USDT",
				"Buy ETH with BTC",
				"Sell ETH for USDT",
			},
		},
	}

	var buf bytes.Buffer
	NewConsoleReporter(&buf).PrintTriangularPaths(paths)

	out := buf.String()
	for _, want := range []string{
		"TRIANGULAR ARBITRAGE",
		"USDT > BTC > ETH > USDT",
		"BEST PATH",
		"1. Buy BTC with USDT",
		"3. Sell ETH for USDT",
		"+0.5500%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestConsoleBreakdown(t *testing.T) {
	b := &profitdomain.Breakdown{
		Pair:               pricing.Pair{Base: "ETH", Quote: "USDC"},
		BuyVenue:           "Kraken",
		SellVenue:          "Binance",
		TradeAmount:        dec("10"),
		BuyPrice:           dec("2500.00"),
		SellPrice:          dec("2512.50"),
		GrossProfit:        dec("125.00"),
		GrossProfitPct:     0.5,
		BuyFee:             dec("40.00"),
		SellFee:            dec("25.13"),
		WithdrawalFee:      dec("12.50"),
		GasCost:            dec("0.00"),
		SlippageCost:       dec("25.00"),
		TotalCosts:         dec("102.63"),
		NetProfit:          dec("22.37"),
		NetProfitPct:       0.089,
		BreakevenSpreadPct: 0.41,
		IsProfitable:       true,
	}

	var buf bytes.Buffer
	NewConsoleReporter(&buf).PrintBreakdown(b)

	out := buf.String()
	for _, want := range []string{
		"PROFIT BREAKDOWN",
		"Trade: 10 ETH",
		"Buy fee:        -$40.00",
		"Total:          -$102.63",
		"Net Profit: $22.37",
		"Breakeven spread: 0.410%",
		"PROFITABLE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestConsoleAlert(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleReporter(&buf).PrintAlert(sampleOpportunity(), dec("5"))

	out := buf.String()
	for _, want := range []string{
		"ARBITRAGE ALERT",
		"ETH/USDC spread",
		"Buy on Kraken at $2500.00",
		"For 5 units:",
		"Risk:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestJSONScanResult(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter(&buf).PrintScanResult(sampleScanResult(t)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got["pair"] != "ETH/USDC" {
		t.Errorf("pair = %v, want ETH/USDC", got["pair"])
	}
	if got["quotes_count"] != float64(2) {
		t.Errorf("quotes_count = %v, want 2", got["quotes_count"])
	}
	best, ok := got["best_opportunity"].(map[string]any)
	if !ok {
		t.Fatal("missing best_opportunity")
	}
	if best["buy_venue"] != "Kraken" {
		t.Errorf("best buy_venue = %v, want Kraken", best["buy_venue"])
	}
	if best["is_profitable"] != true {
		t.Error("best opportunity should be profitable")
	}
}

func TestJSONTriangularPaths(t *testing.T) {
	paths := []*tridomain.Path{
		{
			Tokens:         []string{"USDT", "BTC", "ETH", "USDT"},
			GrossProfitPct: 0.85,
			TotalFeesPct:   0.30,
			NetProfitPct:   0.55,
			Venue:          "binance",
			ExecutionSteps: []string{"Buy BTC with USDT"},
		},
	}

	var buf bytes.Buffer
	if err := NewJSONReporter(&buf).PrintTriangularPaths(paths); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["paths_count"] != float64(1) {
		t.Errorf("paths_count = %v, want 1", got["paths_count"])
	}
	list := got["paths"].([]any)
	p := list[0].(map[string]any)
	if p["exchange"] != "binance" {
		t.Errorf("exchange = %v, want binance", p["exchange"])
	}
	if p["net_profit_pct"] != 0.55 {
		t.Errorf("net_profit_pct = %v, want 0.55", p["net_profit_pct"])
	}
}

func TestJSONBreakdownCosts(t *testing.T) {
	b := &profitdomain.Breakdown{
		Pair:         pricing.Pair{Base: "ETH", Quote: "USDC"},
		BuyVenue:     "Kraken",
		SellVenue:    "Binance",
		TradeAmount:  dec("10"),
		BuyPrice:     dec("2500"),
		SellPrice:    dec("2512.5"),
		GrossProfit:  dec("125"),
		BuyFee:       dec("40"),
		SellFee:      dec("25.13"),
		TotalCosts:   dec("102.63"),
		NetProfit:    dec("22.37"),
		IsProfitable: true,
	}

	var buf bytes.Buffer
	if err := NewJSONReporter(&buf).PrintBreakdown(b); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	costs, ok := got["costs"].(map[string]any)
	if !ok {
		t.Fatal("missing costs object")
	}
	if costs["buy_fee"] != float64(40) {
		t.Errorf("buy_fee = %v, want 40", costs["buy_fee"])
	}
	if costs["total"] != 102.63 {
		t.Errorf("total = %v, want 102.63", costs["total"])
	}
}
