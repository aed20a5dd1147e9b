// Package domain holds the direct arbitrage records produced by a scan.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
)

// Type classifies an arbitrage opportunity.
type Type string

const (
	TypeDirect     Type = "DIRECT"      // buy on A, sell on B
	TypeTriangular Type = "TRIANGULAR"  // A→B→C→A circular
	TypeCrossChain Type = "CROSS_CHAIN" // same asset across chains
)

// RiskLevel buckets the additive risk score.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskExtreme RiskLevel = "EXTREME"
)

// Opportunity is one evaluated buy/sell spread between two venues.
// Derived purely from a quote pair at evaluation time; never mutated after
// construction.
type Opportunity struct {
	Type          Type
	Pair          pricing.Pair
	BuyVenue      string
	SellVenue     string
	BuyVenueType  pricing.VenueType
	SellVenueType pricing.VenueType

	BuyPrice  decimal.Decimal // buy venue ask
	SellPrice decimal.Decimal // sell venue bid

	GrossSpreadPct     float64
	NetSpreadPct       float64
	GrossProfitPerUnit decimal.Decimal
	NetProfitPerUnit   decimal.Decimal

	BuyFeePct  float64
	SellFeePct float64

	// Gas for DEX legs, amount-independent so reported separately rather
	// than folded into the per-unit net.
	EstimatedGasUSD float64

	Risk  RiskLevel
	Notes []string
}

// IsProfitable reports whether the spread survives fees.
func (o *Opportunity) IsProfitable() bool {
	return o.NetProfitPerUnit.IsPositive()
}

// ProfitForAmount scales the per-unit profit to a trade of amount base units.
func (o *Opportunity) ProfitForAmount(amount decimal.Decimal) decimal.Decimal {
	if !o.BuyPrice.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(o.NetProfitPerUnit).Div(o.BuyPrice)
}

// ScanResult is the outcome of scanning one pair across venues.
type ScanResult struct {
	Pair          pricing.Pair
	Quotes        []*pricing.Quote
	Opportunities []*Opportunity
	Best          *Opportunity
	Timestamp     time.Time
}
