// Package venue holds the static fee/venue registry used across the engine.
package venue

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Type classifies a venue as centralized or on-chain.
type Type string

const (
	TypeCEX Type = "CEX"
	TypeDEX Type = "DEX"
)

// Fallbacks applied when a venue is not in the registry. Scanning must
// degrade gracefully when facing unlisted venues, so lookups never fail hard.
var (
	DefaultMakerFee      = decimal.RequireFromString("0.0010") // 0.10%
	DefaultTakerFee      = decimal.RequireFromString("0.0010") // 0.10%
	DefaultWithdrawalFee = decimal.RequireFromString("0.0005") // 0.05%
)

// DefaultGasOverhead is assumed for DEX swaps on unknown venues.
const DefaultGasOverhead uint64 = 150_000

// Config describes one venue's fee structure.
type Config struct {
	ID            string
	Name          string
	Type          Type
	MakerFee      decimal.Decimal
	TakerFee      decimal.Decimal
	WithdrawalFee decimal.Decimal
	GasOverhead   uint64 // swap gas units, DEX only
	Chains        []string
}

// Registry is an immutable venue lookup table. Construct once at startup and
// share by reference; concurrent reads are safe.
type Registry struct {
	byID map[string]*Config
	ids  []string
}

// NewRegistry builds a registry from configs, keyed by normalized ID.
func NewRegistry(configs ...*Config) *Registry {
	r := &Registry{byID: make(map[string]*Config, len(configs))}
	for _, c := range configs {
		id := Normalize(c.ID)
		if _, dup := r.byID[id]; dup {
			continue
		}
		r.byID[id] = c
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r
}

// Normalize canonicalizes a venue name: lowercase, internal spaces removed,
// trailing version tags ("v2", "v3", "v4") stripped.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "")
	for _, tag := range []string{"v2", "v3", "v4"} {
		if base, found := strings.CutSuffix(s, tag); found && base != "" {
			s = base
			break
		}
	}
	return s
}

// Lookup returns the config for name, or (nil, false) on a miss. Callers are
// expected to fall back to the Default* fees rather than treat a miss as fatal.
func (r *Registry) Lookup(name string) (*Config, bool) {
	c, ok := r.byID[Normalize(name)]
	return c, ok
}

// TakerFee returns the venue's taker fee, or DefaultTakerFee on a miss.
func (r *Registry) TakerFee(name string) decimal.Decimal {
	if c, ok := r.Lookup(name); ok {
		return c.TakerFee
	}
	return DefaultTakerFee
}

// WithdrawalFee returns the venue's withdrawal fee, or DefaultWithdrawalFee.
func (r *Registry) WithdrawalFee(name string) decimal.Decimal {
	if c, ok := r.Lookup(name); ok {
		return c.WithdrawalFee
	}
	return DefaultWithdrawalFee
}

// GasOverhead returns the venue's swap gas units, or DefaultGasOverhead.
func (r *Registry) GasOverhead(name string) uint64 {
	if c, ok := r.Lookup(name); ok && c.GasOverhead > 0 {
		return c.GasOverhead
	}
	return DefaultGasOverhead
}

// List returns the normalized IDs of registered venues, optionally filtered
// by type. Pass "" for all. Result is sorted and freshly allocated.
func (r *Registry) List(t Type) []string {
	out := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		if t == "" || r.byID[id].Type == t {
			out = append(out, id)
		}
	}
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultRegistry returns the built-in venue table (fee schedules as of 2024).
func DefaultRegistry() *Registry {
	return NewRegistry(
		&Config{
			ID: "binance", Name: "Binance", Type: TypeCEX,
			MakerFee: dec("0.0010"), TakerFee: dec("0.0010"), WithdrawalFee: dec("0.0005"),
		},
		&Config{
			ID: "coinbase", Name: "Coinbase", Type: TypeCEX,
			MakerFee: dec("0.0040"), TakerFee: dec("0.0060"), WithdrawalFee: dec("0"),
		},
		&Config{
			ID: "kraken", Name: "Kraken", Type: TypeCEX,
			MakerFee: dec("0.0016"), TakerFee: dec("0.0026"), WithdrawalFee: dec("0.0010"),
		},
		&Config{
			ID: "kucoin", Name: "KuCoin", Type: TypeCEX,
			MakerFee: dec("0.0010"), TakerFee: dec("0.0010"), WithdrawalFee: dec("0.0003"),
		},
		&Config{
			ID: "okx", Name: "OKX", Type: TypeCEX,
			MakerFee: dec("0.0008"), TakerFee: dec("0.0010"), WithdrawalFee: dec("0.0004"),
		},
		&Config{
			ID: "uniswap", Name: "Uniswap V3", Type: TypeDEX,
			MakerFee: dec("0.0030"), TakerFee: dec("0.0030"), WithdrawalFee: dec("0"),
			GasOverhead: 150_000,
			Chains:      []string{"ethereum", "polygon", "arbitrum", "optimism"},
		},
		&Config{
			ID: "sushiswap", Name: "SushiSwap", Type: TypeDEX,
			MakerFee: dec("0.0030"), TakerFee: dec("0.0030"), WithdrawalFee: dec("0"),
			GasOverhead: 150_000,
			Chains:      []string{"ethereum", "polygon", "arbitrum"},
		},
		&Config{
			ID: "curve", Name: "Curve", Type: TypeDEX,
			MakerFee: dec("0.0004"), TakerFee: dec("0.0004"), WithdrawalFee: dec("0"),
			GasOverhead: 200_000,
			Chains:      []string{"ethereum", "polygon", "arbitrum"},
		},
		&Config{
			ID: "balancer", Name: "Balancer", Type: TypeDEX,
			MakerFee: dec("0.0010"), TakerFee: dec("0.0010"), WithdrawalFee: dec("0"),
			GasOverhead: 180_000,
			Chains:      []string{"ethereum", "polygon"},
		},
	)
}
