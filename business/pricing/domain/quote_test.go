package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/internal/apperror"
)

func TestParsePair(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Pair
		wantErr bool
	}{
		{"slash separator", "ETH/USDC", Pair{"ETH", "USDC"}, false},
		{"dash separator", "eth-usdc", Pair{"ETH", "USDC"}, false},
		{"lowercase normalized", "btc/usdt", Pair{"BTC", "USDT"}, false},
		{"surrounding spaces", " ETH / USDC ", Pair{"ETH", "USDC"}, false},
		{"missing separator", "ETHUSDC", Pair{}, true},
		{"empty quote", "ETH/", Pair{}, true},
		{"same token", "ETH/ETH", Pair{}, true},
		{"too many parts", "ETH/USDC/BTC", Pair{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePair(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePair(%q): expected error", tt.input)
				}
				if !errors.Is(err, apperror.New(apperror.CodeInvalidPair)) {
					t.Errorf("error code = %s, want INVALID_PAIR", apperror.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePair(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePair(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPairInvert(t *testing.T) {
	p := MustPair("ETH/USDC")
	inv := p.Invert()
	if inv.String() != "USDC/ETH" {
		t.Errorf("Invert() = %s, want USDC/ETH", inv)
	}
	if inv.Invert() != p {
		t.Error("double inversion should round-trip")
	}
}

func TestNewQuoteDerivedFields(t *testing.T) {
	bid := decimal.RequireFromString("2541.20")
	ask := decimal.RequireFromString("2541.50")

	q, err := NewQuote("Binance", VenueCEX, MustPair("ETH/USDC"), bid, ask, decimal.NewFromInt(1_500_000), "")
	if err != nil {
		t.Fatalf("NewQuote: %v", err)
	}

	wantMid := decimal.RequireFromString("2541.35")
	if !q.Mid.Equal(wantMid) {
		t.Errorf("Mid = %s, want %s", q.Mid, wantMid)
	}

	// (2541.50-2541.20)/2541.35*100
	wantSpread := 0.011805
	if math.Abs(q.SpreadPct-wantSpread) > 1e-4 {
		t.Errorf("SpreadPct = %f, want ~%f", q.SpreadPct, wantSpread)
	}
}

func TestNewQuoteRejectsCrossedBook(t *testing.T) {
	_, err := NewQuote("kraken", VenueCEX, MustPair("ETH/USDC"),
		decimal.NewFromInt(2550), decimal.NewFromInt(2540), decimal.Zero, "")
	if err == nil {
		t.Fatal("expected error for ask < bid")
	}
	if apperror.GetCode(err) != apperror.CodeOrderbookCrossed {
		t.Errorf("error code = %s, want ORDERBOOK_CROSSED", apperror.GetCode(err))
	}
}

func TestNewQuoteRejectsNonPositivePrices(t *testing.T) {
	_, err := NewQuote("binance", VenueCEX, MustPair("ETH/USDC"),
		decimal.Zero, decimal.NewFromInt(2540), decimal.Zero, "")
	if err == nil {
		t.Fatal("expected error for zero bid")
	}
	if apperror.GetCode(err) != apperror.CodeInvalidPrice {
		t.Errorf("error code = %s, want INVALID_PRICE", apperror.GetCode(err))
	}
}

func TestQuoteFreshness(t *testing.T) {
	q, err := NewQuote("binance", VenueCEX, MustPair("ETH/USDC"),
		decimal.NewFromInt(2540), decimal.NewFromInt(2541), decimal.Zero, "")
	if err != nil {
		t.Fatalf("NewQuote: %v", err)
	}

	if !q.IsFresh() {
		t.Error("new quote should be fresh")
	}

	q.Timestamp = time.Now().Add(-FreshnessWindow - time.Second)
	if q.IsFresh() {
		t.Error("aged quote should be stale")
	}
	if q.StalenessSeconds() < FreshnessWindow.Seconds() {
		t.Errorf("StalenessSeconds() = %f, want > %f", q.StalenessSeconds(), FreshnessWindow.Seconds())
	}
}
