package venue

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Binance", "binance"},
		{"spaces stripped", "Uniswap V3", "uniswap"},
		{"version tag stripped", "uniswapv3", "uniswap"},
		{"v2 tag stripped", "SushiSwap V2", "sushiswap"},
		{"plain name untouched", "curve", "curve"},
		{"bare version tag kept", "v3", "v3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLookupKnownVenues(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		query     string
		wantTaker string
		wantType  Type
	}{
		{"binance", "0.001", TypeCEX},
		{"Coinbase", "0.006", TypeCEX},
		{"kraken", "0.0026", TypeCEX},
		{"Uniswap V3", "0.003", TypeDEX},
		{"curve", "0.0004", TypeDEX},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, ok := r.Lookup(tt.query)
			if !ok {
				t.Fatalf("Lookup(%q): not found", tt.query)
			}
			if !c.TakerFee.Equal(decimal.RequireFromString(tt.wantTaker)) {
				t.Errorf("taker fee = %s, want %s", c.TakerFee, tt.wantTaker)
			}
			if c.Type != tt.wantType {
				t.Errorf("type = %s, want %s", c.Type, tt.wantType)
			}
		})
	}
}

func TestLookupMissFallsBackToDefaults(t *testing.T) {
	r := DefaultRegistry()

	if _, ok := r.Lookup("hyperliquid"); ok {
		t.Fatal("expected miss for unlisted venue")
	}
	if !r.TakerFee("hyperliquid").Equal(DefaultTakerFee) {
		t.Errorf("TakerFee miss = %s, want %s", r.TakerFee("hyperliquid"), DefaultTakerFee)
	}
	if !r.WithdrawalFee("hyperliquid").Equal(DefaultWithdrawalFee) {
		t.Errorf("WithdrawalFee miss = %s, want %s", r.WithdrawalFee("hyperliquid"), DefaultWithdrawalFee)
	}
	if r.GasOverhead("hyperliquid") != DefaultGasOverhead {
		t.Errorf("GasOverhead miss = %d, want %d", r.GasOverhead("hyperliquid"), DefaultGasOverhead)
	}
}

func TestListByType(t *testing.T) {
	r := DefaultRegistry()

	all := r.List("")
	if len(all) != 9 {
		t.Fatalf("List(all) = %d venues, want 9", len(all))
	}

	cex := r.List(TypeCEX)
	if len(cex) != 5 {
		t.Errorf("List(CEX) = %d venues, want 5", len(cex))
	}
	dex := r.List(TypeDEX)
	if len(dex) != 4 {
		t.Errorf("List(DEX) = %d venues, want 4", len(dex))
	}
	for _, id := range dex {
		c, _ := r.Lookup(id)
		if c.GasOverhead == 0 {
			t.Errorf("DEX venue %s has no gas overhead", id)
		}
	}
}
