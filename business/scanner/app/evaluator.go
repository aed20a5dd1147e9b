// Package app implements direct opportunity evaluation and the scan driver.
package app

import (
	"fmt"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/business/scanner/domain"
	"github.com/fd1az/arb-finder/internal/venue"
)

// GasParams carries the reference prices used to estimate DEX gas cost.
type GasParams struct {
	PriceGwei   float64
	ETHPriceUSD float64
}

// CostUSD estimates one on-chain transaction's cost.
func (g GasParams) CostUSD(gasUnits uint64) float64 {
	return float64(gasUnits) * g.PriceGwei * 1e-9 * g.ETHPriceUSD
}

// Evaluator scores a single buy/sell quote pair. Pure computation, no I/O;
// safe for concurrent use.
type Evaluator struct {
	venues *venue.Registry
	gas    GasParams
}

// NewEvaluator creates an Evaluator over the given venue registry.
func NewEvaluator(venues *venue.Registry, gas GasParams) *Evaluator {
	return &Evaluator{venues: venues, gas: gas}
}

// Evaluate returns the opportunity in buying at buy.Ask and selling at
// sell.Bid, or nil when the gross spread is non-positive. Nil is the
// no-opportunity result, not an error.
func (e *Evaluator) Evaluate(buy, sell *pricing.Quote) *domain.Opportunity {
	if !sell.Bid.GreaterThan(buy.Ask) {
		return nil
	}

	buyFee := e.venues.TakerFee(buy.Venue)
	sellFee := e.venues.TakerFee(sell.Venue)

	grossProfit := sell.Bid.Sub(buy.Ask)
	grossSpreadPct, _ := grossProfit.Div(buy.Ask).Mul(hundred).Float64()

	totalFees := buy.Ask.Mul(buyFee).Add(sell.Bid.Mul(sellFee))

	// Gas applies per DEX leg; amount-independent, reported but not
	// subtracted from the per-unit net (the calculator folds it in for
	// concrete trade sizes).
	gasUSD := 0.0
	if buy.VenueType == pricing.VenueDEX {
		gasUSD += e.gas.CostUSD(e.venues.GasOverhead(buy.Venue))
	}
	if sell.VenueType == pricing.VenueDEX {
		gasUSD += e.gas.CostUSD(e.venues.GasOverhead(sell.Venue))
	}

	netProfit := grossProfit.Sub(totalFees)
	netSpreadPct, _ := netProfit.Div(buy.Ask).Mul(hundred).Float64()

	risk := assessRisk(buy, sell, netSpreadPct)

	var notes []string
	if !buy.IsFresh() || !sell.IsFresh() {
		notes = append(notes, "Warning: Price data may be stale")
	}
	if buy.VenueType == pricing.VenueDEX {
		notes = append(notes, fmt.Sprintf("Buy requires on-chain tx (~$%.2f gas)", gasUSD))
	}
	if sell.VenueType == pricing.VenueDEX {
		notes = append(notes, "Sell requires on-chain tx")
	}
	if grossSpreadPct > 2.0 {
		notes = append(notes, "Large spread may indicate low liquidity or stale data")
	}

	buyFeePct, _ := buyFee.Mul(hundred).Float64()
	sellFeePct, _ := sellFee.Mul(hundred).Float64()

	return &domain.Opportunity{
		Type:               domain.TypeDirect,
		Pair:               buy.Pair,
		BuyVenue:           buy.Venue,
		SellVenue:          sell.Venue,
		BuyVenueType:       buy.VenueType,
		SellVenueType:      sell.VenueType,
		BuyPrice:           buy.Ask,
		SellPrice:          sell.Bid,
		GrossSpreadPct:     grossSpreadPct,
		NetSpreadPct:       netSpreadPct,
		GrossProfitPerUnit: grossProfit,
		NetProfitPerUnit:   netProfit,
		BuyFeePct:          buyFeePct,
		SellFeePct:         sellFeePct,
		EstimatedGasUSD:    gasUSD,
		Risk:               risk,
		Notes:              notes,
	}
}

// assessRisk accumulates an additive score (0 = safest) and buckets it.
func assessRisk(buy, sell *pricing.Quote, netSpreadPct float64) domain.RiskLevel {
	score := 0

	// Staleness
	if buy.StalenessSeconds() > 10 {
		score += 2
	}
	if sell.StalenessSeconds() > 10 {
		score += 2
	}

	// Very large spreads are suspicious
	if netSpreadPct > 5.0 {
		score += 3
	} else if netSpreadPct > 2.0 {
		score++
	}

	// DEX involvement brings execution uncertainty
	if buy.VenueType == pricing.VenueDEX {
		score++
	}
	if sell.VenueType == pricing.VenueDEX {
		score++
	}

	// Low volume means slippage risk
	minVolume := buy.Volume24h
	if sell.Volume24h.LessThan(minVolume) {
		minVolume = sell.Volume24h
	}
	if minVolume.LessThan(volumeFloorLow) {
		score += 2
	} else if minVolume.LessThan(volumeFloorMed) {
		score++
	}

	switch {
	case score <= 1:
		return domain.RiskLow
	case score <= 3:
		return domain.RiskMedium
	case score <= 5:
		return domain.RiskHigh
	default:
		return domain.RiskExtreme
	}
}
