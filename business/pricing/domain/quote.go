// Package domain holds the pricing domain model: trading pairs and venue quotes.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/internal/apperror"
)

// VenueType distinguishes centralized from on-chain venues.
type VenueType string

const (
	VenueCEX VenueType = "CEX"
	VenueDEX VenueType = "DEX"
)

// FreshnessWindow is how old a quote may be before it is considered stale.
const FreshnessWindow = 30 * time.Second

// Pair is a trading pair like ETH/USDC.
type Pair struct {
	Base  string
	Quote string
}

// ParsePair parses "ETH/USDC" (also accepts "ETH-USDC"), uppercasing both
// tokens. Malformed input is rejected with CodeInvalidPair.
func ParsePair(s string) (Pair, error) {
	sep := "/"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != 2 {
		return Pair{}, apperror.Validation(apperror.CodeInvalidPair, s)
	}
	base := strings.ToUpper(strings.TrimSpace(parts[0]))
	quote := strings.ToUpper(strings.TrimSpace(parts[1]))
	if base == "" || quote == "" || base == quote {
		return Pair{}, apperror.Validation(apperror.CodeInvalidPair, s)
	}
	return Pair{Base: base, Quote: quote}, nil
}

// MustPair is ParsePair for static literals; panics on malformed input.
func MustPair(s string) Pair {
	p, err := ParsePair(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// Invert swaps base and quote.
func (p Pair) Invert() Pair {
	return Pair{Base: p.Quote, Quote: p.Base}
}

// Quote is one venue's bid/ask snapshot for a pair. Immutable after
// construction; discarded after one scan cycle.
type Quote struct {
	Venue     string
	VenueType VenueType
	Pair      Pair
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Mid       decimal.Decimal
	SpreadPct float64 // presentation only
	Volume24h decimal.Decimal
	Timestamp time.Time
	Chain     string // DEX quotes only
}

// NewQuote validates and derives Mid and SpreadPct. A crossed book
// (ask below bid) is rejected rather than propagated into the scanners.
func NewQuote(venue string, vt VenueType, pair Pair, bid, ask, volume decimal.Decimal, chain string) (*Quote, error) {
	if !bid.IsPositive() || !ask.IsPositive() {
		return nil, apperror.Validation(apperror.CodeInvalidPrice,
			fmt.Sprintf("%s %s bid=%s ask=%s", venue, pair, bid, ask))
	}
	if ask.LessThan(bid) {
		return nil, apperror.Validation(apperror.CodeOrderbookCrossed,
			fmt.Sprintf("%s %s bid=%s ask=%s", venue, pair, bid, ask))
	}

	mid := bid.Add(ask).Div(decimal.NewFromInt(2))
	spreadPct, _ := ask.Sub(bid).Div(mid).Mul(decimal.NewFromInt(100)).Float64()

	return &Quote{
		Venue:     venue,
		VenueType: vt,
		Pair:      pair,
		Bid:       bid,
		Ask:       ask,
		Mid:       mid,
		SpreadPct: spreadPct,
		Volume24h: volume,
		Timestamp: time.Now(),
		Chain:     chain,
	}, nil
}

// IsFresh reports whether the quote is younger than FreshnessWindow.
func (q *Quote) IsFresh() bool {
	return time.Since(q.Timestamp) < FreshnessWindow
}

// StalenessSeconds returns the quote's age in seconds.
func (q *Quote) StalenessSeconds() float64 {
	return time.Since(q.Timestamp).Seconds()
}
