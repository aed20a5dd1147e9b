// Package domain holds the itemized cost model for a concrete arbitrage trade.
package domain

import (
	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
)

// Breakdown itemizes every cost of one buy/sell trade at a concrete size.
// Monetary fields are exact decimals; percentage fields are presentation-only.
type Breakdown struct {
	Pair        pricing.Pair
	BuyVenue    string
	SellVenue   string
	TradeAmount decimal.Decimal
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal

	GrossProfit    decimal.Decimal
	GrossProfitPct float64

	BuyFee        decimal.Decimal
	SellFee       decimal.Decimal
	WithdrawalFee decimal.Decimal
	GasCost       decimal.Decimal // USD across DEX legs
	SlippageCost  decimal.Decimal
	TotalCosts    decimal.Decimal

	NetProfit    decimal.Decimal
	NetProfitPct float64
	NetProfitUSD decimal.Decimal

	// BreakevenSpreadPct is the minimum gross spread needed to net zero.
	// Gas and withdrawal are excluded from it, a documented simplification.
	BreakevenSpreadPct float64
	ProfitPerDollar    decimal.Decimal
	IsProfitable       bool
}

// SlippageEstimate decomposes the slippage model's factors.
type SlippageEstimate struct {
	BasePct         float64
	SizeFactor      float64
	LiquidityFactor float64
	TotalPct        float64
	Cost            decimal.Decimal
}
