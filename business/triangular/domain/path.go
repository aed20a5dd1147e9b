// Package domain holds the triangular arbitrage model: venue pair books and
// evaluated circular paths.
package domain

import (
	"github.com/shopspring/decimal"
)

// TradingPair is one venue market with executable prices. Storage is
// directionless; traversal is bidirectional: trading base→quote sells base at
// Bid, quote→base buys base at Ask.
type TradingPair struct {
	Base    string
	Quote   string
	Bid     decimal.Decimal
	Ask     decimal.Decimal
	FeeRate decimal.Decimal
	Venue   string
}

// Path is an evaluated three-hop cycle A→B→C→A on one venue.
type Path struct {
	// Tokens is the ordered cycle, ending where it started
	// (length 4 for a triangle).
	Tokens []string
	Pairs  []TradingPair

	GrossProfitPct float64
	// NetProfitPct is GrossProfitPct minus TotalFeesPct. Fees are already
	// compounded into the walk that produced the gross figure, so the net
	// subtracts them a second time; kept for parity with reported numbers
	// downstream consumers expect.
	NetProfitPct float64
	// TotalFeesPct sums each hop's fee rate additively.
	TotalFeesPct float64

	Venue          string
	ExecutionSteps []string
}

// IsProfitable reports whether the cycle nets above zero.
func (p *Path) IsProfitable() bool {
	return p.NetProfitPct > 0
}
