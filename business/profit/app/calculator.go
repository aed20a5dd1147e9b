// Package app implements the arbitrage profit/cost calculator.
package app

import (
	"fmt"

	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/business/profit/domain"
	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/venue"
)

var (
	hundred = decimal.NewFromInt(100)
	gwei    = decimal.NewFromInt(1_000_000_000)

	// defaultLiquidityUSD is the assumed pool depth when the input leaves
	// LiquidityUSD unset.
	defaultLiquidityUSD = decimal.NewFromInt(1_000_000)
)

// Config tunes the calculator's cost assumptions.
type Config struct {
	GasPriceGwei    float64
	ETHPriceUSD     float64
	BaseSlippagePct float64
}

// DefaultConfig mirrors the documented defaults: 30 gwei, $2500 ETH,
// 0.1% base slippage.
func DefaultConfig() Config {
	return Config{GasPriceGwei: 30, ETHPriceUSD: 2500, BaseSlippagePct: 0.1}
}

// CalcInput describes one concrete trade to cost out.
type CalcInput struct {
	Pair              pricing.Pair
	BuyVenue          string
	SellVenue         string
	BuyPrice          decimal.Decimal
	SellPrice         decimal.Decimal
	Amount            decimal.Decimal // base currency units
	LiquidityUSD      decimal.Decimal // assumed pool depth; zero means the default
	IncludeWithdrawal bool
	BuyVenueType      pricing.VenueType
	SellVenueType     pricing.VenueType
}

// Calculator produces itemized profit breakdowns. Pure computation; safe for
// concurrent use.
type Calculator struct {
	venues *venue.Registry
	cfg    Config
}

// NewCalculator creates a Calculator over the given venue registry.
func NewCalculator(venues *venue.Registry, cfg Config) *Calculator {
	return &Calculator{venues: venues, cfg: cfg}
}

// Calculate costs out the trade. Invalid inputs (non-positive amount or
// prices) are rejected before any computation.
func (c *Calculator) Calculate(in CalcInput) (*domain.Breakdown, error) {
	if !in.Amount.IsPositive() {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, in.Amount.String())
	}
	if !in.BuyPrice.IsPositive() || !in.SellPrice.IsPositive() {
		return nil, apperror.Validation(apperror.CodeInvalidPrice,
			fmt.Sprintf("buy=%s sell=%s", in.BuyPrice, in.SellPrice))
	}

	buyCost := in.Amount.Mul(in.BuyPrice)
	sellRevenue := in.Amount.Mul(in.SellPrice)
	grossProfit := sellRevenue.Sub(buyCost)
	grossProfitPct, _ := grossProfit.Div(buyCost).Mul(hundred).Float64()

	buyFee := buyCost.Mul(c.venues.TakerFee(in.BuyVenue))
	sellFee := sellRevenue.Mul(c.venues.TakerFee(in.SellVenue))

	withdrawalFee := decimal.Zero
	if in.IncludeWithdrawal {
		withdrawalFee = in.Amount.Mul(c.venues.WithdrawalFee(in.BuyVenue))
	}

	gasUSD := decimal.Zero
	if in.BuyVenueType == pricing.VenueDEX {
		gasUSD = gasUSD.Add(c.gasCostUSD(in.BuyVenue))
	}
	if in.SellVenueType == pricing.VenueDEX {
		gasUSD = gasUSD.Add(c.gasCostUSD(in.SellVenue))
	}

	liquidity := in.LiquidityUSD
	if !liquidity.IsPositive() {
		liquidity = defaultLiquidityUSD
	}
	slippage := c.EstimateSlippage(in.Amount, in.BuyPrice, liquidity)

	totalCosts := buyFee.Add(sellFee).Add(withdrawalFee).Add(slippage.Cost)
	if gasUSD.IsPositive() {
		// Shared base-currency unit before netting.
		totalCosts = totalCosts.Add(gasUSD.Div(in.BuyPrice))
	}

	netProfit := grossProfit.Sub(totalCosts)
	netProfitPct, _ := netProfit.Div(buyCost).Mul(hundred).Float64()
	netProfitUSD := netProfit.Mul(in.BuyPrice)

	totalFeePct, _ := buyFee.Add(sellFee).Div(buyCost).Mul(hundred).Float64()
	breakevenSpreadPct := totalFeePct + slippage.TotalPct

	return &domain.Breakdown{
		Pair:               in.Pair,
		BuyVenue:           in.BuyVenue,
		SellVenue:          in.SellVenue,
		TradeAmount:        in.Amount,
		BuyPrice:           in.BuyPrice,
		SellPrice:          in.SellPrice,
		GrossProfit:        grossProfit,
		GrossProfitPct:     grossProfitPct,
		BuyFee:             buyFee,
		SellFee:            sellFee,
		WithdrawalFee:      withdrawalFee,
		GasCost:            gasUSD,
		SlippageCost:       slippage.Cost,
		TotalCosts:         totalCosts,
		NetProfit:          netProfit,
		NetProfitPct:       netProfitPct,
		NetProfitUSD:       netProfitUSD,
		BreakevenSpreadPct: breakevenSpreadPct,
		ProfitPerDollar:    netProfitUSD.Div(buyCost),
		IsProfitable:       netProfit.IsPositive(),
	}, nil
}

// EstimateSlippage applies the simplified size/liquidity model: base
// slippage scaled by a size factor (share of pool liquidity) and a
// liquidity-depth factor.
func (c *Calculator) EstimateSlippage(amount, price, liquidityUSD decimal.Decimal) domain.SlippageEstimate {
	tradeValue := amount.Mul(price)

	sizePct, _ := tradeValue.Div(liquidityUSD).Mul(hundred).Float64()
	sizeFactor := 1.0
	switch {
	case sizePct < 0.1:
		sizeFactor = 1.0
	case sizePct < 1.0:
		sizeFactor = 1.5
	case sizePct < 5.0:
		sizeFactor = 2.5
	default:
		sizeFactor = 5.0
	}

	liquidityFactor := 1.0
	switch {
	case liquidityUSD.LessThan(decimal.NewFromInt(100_000)):
		liquidityFactor = 2.0
	case liquidityUSD.LessThan(decimal.NewFromInt(1_000_000)):
		liquidityFactor = 1.5
	}

	totalPct := c.cfg.BaseSlippagePct * sizeFactor * liquidityFactor
	cost := tradeValue.Mul(decimal.NewFromFloat(totalPct / 100))

	return domain.SlippageEstimate{
		BasePct:         c.cfg.BaseSlippagePct,
		SizeFactor:      sizeFactor,
		LiquidityFactor: liquidityFactor,
		TotalPct:        totalPct,
		Cost:            cost,
	}
}

// MinimumAmount inverts the fee model: the trade size (in USD) needed for
// targetProfitUSD at the given gross spread. Returns -1 when fees exceed the
// spread at any size.
func (c *Calculator) MinimumAmount(buyVenue, sellVenue string, spreadPct float64, targetProfitUSD decimal.Decimal) decimal.Decimal {
	buyTaker := c.venues.TakerFee(buyVenue)
	sellTaker := c.venues.TakerFee(sellVenue)
	withdrawal := c.venues.WithdrawalFee(buyVenue)

	totalFeeRate := buyTaker.Add(sellTaker).Add(withdrawal).
		Add(decimal.NewFromFloat(c.cfg.BaseSlippagePct / 100))

	netSpreadRate := decimal.NewFromFloat(spreadPct / 100).Sub(totalFeeRate)
	if !netSpreadRate.IsPositive() {
		return decimal.NewFromInt(-1)
	}
	return targetProfitUSD.Div(netSpreadRate)
}

func (c *Calculator) gasCostUSD(venueName string) decimal.Decimal {
	units := c.venues.GasOverhead(venueName)
	return decimal.NewFromInt(int64(units)).
		Mul(decimal.NewFromFloat(c.cfg.GasPriceGwei)).
		Mul(decimal.NewFromFloat(c.cfg.ETHPriceUSD)).
		Div(gwei)
}
