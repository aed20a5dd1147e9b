package app

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/business/triangular/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pair(base, quote, bid, ask, fee string) domain.TradingPair {
	return domain.TradingPair{
		Base: base, Quote: quote,
		Bid: dec(bid), Ask: dec(ask),
		FeeRate: dec(fee), Venue: "testex",
	}
}

// Internally consistent cross-rates: 2500 / 62500 = 0.04 exactly.
func balancedPairs(fee string) []domain.TradingPair {
	return []domain.TradingPair{
		pair("ETH", "USDT", "2500", "2500", fee),
		pair("BTC", "USDT", "62500", "62500", fee),
		pair("ETH", "BTC", "0.04", "0.04", fee),
	}
}

// One mispriced edge: ETH trades at 0.039 BTC while the cross-rate says 0.04.
func mispricedPairs() []domain.TradingPair {
	return []domain.TradingPair{
		pair("ETH", "USDT", "2500", "2500", "0.001"),
		pair("BTC", "USDT", "62500", "62500", "0.001"),
		pair("ETH", "BTC", "0.039", "0.039", "0.001"),
	}
}

func TestBalancedTriangleLosesTheFees(t *testing.T) {
	f := NewFinder(0.1)

	path := f.AnalyzeTriangle("ETH", "BTC", "USDT", "testex", balancedPairs("0.001"))
	if path == nil {
		t.Fatal("expected a path for a fully connected triangle")
	}

	// Three hops of 0.1% compounded: (0.999)^3 - 1.
	wantGross := (math.Pow(0.999, 3) - 1) * 100
	if math.Abs(path.GrossProfitPct-wantGross) > 0.001 {
		t.Errorf("GrossProfitPct = %f, want ~%f", path.GrossProfitPct, wantGross)
	}
	if math.Abs(path.TotalFeesPct-0.3) > 1e-9 {
		t.Errorf("TotalFeesPct = %f, want 0.3", path.TotalFeesPct)
	}
	// Net subtracts the additive fee total on top of the fee-adjusted walk.
	wantNet := path.GrossProfitPct - path.TotalFeesPct
	if math.Abs(path.NetProfitPct-wantNet) > 1e-9 {
		t.Errorf("NetProfitPct = %f, want gross-fees = %f", path.NetProfitPct, wantNet)
	}
	if path.IsProfitable() {
		t.Error("balanced triangle must not be profitable")
	}

	// And it never clears a 0.1% profit floor.
	if got := f.FindOpportunities("testex", balancedPairs("0.001")); len(got) != 0 {
		t.Errorf("FindOpportunities = %d paths, want 0", len(got))
	}
}

func TestMispricedTriangleIsFound(t *testing.T) {
	f := NewFinder(0.1)

	paths := f.FindOpportunities("testex", mispricedPairs())
	if len(paths) == 0 {
		t.Fatal("expected the mispriced triangle to surface")
	}

	best := paths[0]
	if !best.IsProfitable() {
		t.Errorf("best path net = %f, want profitable", best.NetProfitPct)
	}
	// 2500/(62500*0.039) * 0.999^3 - 1, minus 0.3 in reported fees.
	wantNet := (2500.0/(62500.0*0.039)*math.Pow(0.999, 3)-1)*100 - 0.3
	if math.Abs(best.NetProfitPct-wantNet) > 0.01 {
		t.Errorf("NetProfitPct = %f, want ~%f", best.NetProfitPct, wantNet)
	}

	if len(best.Tokens) != 4 {
		t.Fatalf("Tokens = %v, want a closed triangle of length 4", best.Tokens)
	}
	if best.Tokens[0] != best.Tokens[3] {
		t.Errorf("cycle must end where it started, got %v", best.Tokens)
	}
	if len(best.Pairs) != 3 || len(best.ExecutionSteps) != 3 {
		t.Errorf("want 3 hops, got %d pairs / %d steps", len(best.Pairs), len(best.ExecutionSteps))
	}
}

// Walking the reported pairs along the token cycle must reproduce the
// valuation's gross figure.
func TestExecutionStepsMatchValuation(t *testing.T) {
	f := NewFinder(0)

	best := f.AnalyzeTriangle("ETH", "BTC", "USDT", "testex", mispricedPairs())
	if best == nil {
		t.Fatal("expected a path")
	}

	amount := decimal.NewFromInt(1)
	for i, p := range best.Pairs {
		from := best.Tokens[i]
		if p.Base == from {
			amount = amount.Mul(p.Bid)
		} else {
			amount = amount.Div(p.Ask)
		}
		amount = amount.Mul(decimal.NewFromInt(1).Sub(p.FeeRate))
	}

	replayed, _ := amount.Sub(decimal.NewFromInt(1)).Float64()
	if math.Abs(replayed*100-best.GrossProfitPct) > 1e-9 {
		t.Errorf("replayed gross = %f, valuation gross = %f", replayed*100, best.GrossProfitPct)
	}
}

func TestTriangleEnumerationOrderIndependent(t *testing.T) {
	f := NewFinder(0.1)

	forward := mispricedPairs()
	reversed := []domain.TradingPair{forward[2], forward[0], forward[1]}

	a := f.FindOpportunities("testex", forward)
	b := f.FindOpportunities("testex", reversed)

	if len(a) != len(b) {
		t.Fatalf("path count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if math.Abs(a[i].NetProfitPct-b[i].NetProfitPct) > 1e-9 {
			t.Errorf("path %d net differs: %f vs %f", i, a[i].NetProfitPct, b[i].NetProfitPct)
		}
	}
}

func TestMissingEdgeInvalidatesTriangle(t *testing.T) {
	f := NewFinder(0)

	// No ETH/BTC market: the triangle cannot close.
	pairs := []domain.TradingPair{
		pair("ETH", "USDT", "2500", "2500", "0.001"),
		pair("BTC", "USDT", "62500", "62500", "0.001"),
	}

	if path := f.AnalyzeTriangle("ETH", "BTC", "USDT", "testex", pairs); path != nil {
		t.Errorf("expected nil path, got net %f", path.NetProfitPct)
	}
	if got := f.FindOpportunities("testex", pairs); len(got) != 0 {
		t.Errorf("FindOpportunities = %d paths, want 0", len(got))
	}
}

func TestAnalyzeTriangleUppercasesTokens(t *testing.T) {
	f := NewFinder(0)

	path := f.AnalyzeTriangle("eth", "btc", "usdt", "testex", balancedPairs("0.001"))
	if path == nil {
		t.Fatal("lowercase tokens should resolve")
	}
}

func TestFindOpportunitiesSortedDescending(t *testing.T) {
	f := NewFinder(-10)

	// Two triangles sharing an edge, one mispriced harder than the other.
	pairs := append(mispricedPairs(),
		pair("SOL", "USDT", "150", "150", "0.001"),
		pair("SOL", "BTC", "0.0023", "0.0023", "0.001"),
	)

	paths := f.FindOpportunities("testex", pairs)
	if len(paths) < 2 {
		t.Fatalf("want >= 2 paths, got %d", len(paths))
	}
	for i := 1; i < len(paths); i++ {
		if paths[i].NetProfitPct > paths[i-1].NetProfitPct {
			t.Fatal("paths not sorted descending by net profit")
		}
	}
}

func BenchmarkFindOpportunities(b *testing.B) {
	f := NewFinder(0.1)
	pairs := mispricedPairs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.FindOpportunities("testex", pairs)
	}
}
