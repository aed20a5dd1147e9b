package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	profitapp "github.com/fd1az/arb-finder/business/profit/app"
	"github.com/fd1az/arb-finder/internal/venue"
)

func newCalcCmd(rt *runtime) *cobra.Command {
	var (
		pairSpec          string
		buyVenue          string
		sellVenue         string
		buyPrice          float64
		sellPrice         float64
		amount            float64
		liquidityUSD      float64
		includeWithdrawal bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Itemize the costs of one concrete arbitrage trade",
		Long: `Calc breaks a sized trade down into gross profit, per-venue fees,
withdrawal, gas and slippage. Prices default to live quotes from the
configured source; pass --buy-price/--sell-price to pin them. Exits 1
when the trade does not net a profit.`,
		Example: `  arbfinder calc --buy kraken --sell binance --amount 10
  arbfinder calc --pair BTC/USDT --buy coinbase --sell okx \
      --buy-price 64000 --sell-price 64400 --amount 0.5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			pair, err := pricing.ParsePair(pairSpec)
			if err != nil {
				return err
			}

			liquidity := liquidityUSD
			if !cmd.Flags().Changed("liquidity") {
				liquidity = rt.cfg.Slippage.LiquidityUSD
			}

			in := profitapp.CalcInput{
				Pair:              pair,
				BuyVenue:          buyVenue,
				SellVenue:         sellVenue,
				Amount:            decimal.NewFromFloat(amount),
				LiquidityUSD:      decimal.NewFromFloat(liquidity),
				IncludeWithdrawal: includeWithdrawal,
				BuyVenueType:      lookupVenueType(rt.venues, buyVenue),
				SellVenueType:     lookupVenueType(rt.venues, sellVenue),
			}

			if cmd.Flags().Changed("buy-price") {
				in.BuyPrice = decimal.NewFromFloat(buyPrice)
			} else {
				q, err := rt.source.FetchQuote(ctx, pair, buyVenue)
				if err != nil {
					return fmt.Errorf("fetch buy quote: %w", err)
				}
				in.BuyPrice = q.Ask
				in.BuyVenueType = q.VenueType
			}
			if cmd.Flags().Changed("sell-price") {
				in.SellPrice = decimal.NewFromFloat(sellPrice)
			} else {
				q, err := rt.source.FetchQuote(ctx, pair, sellVenue)
				if err != nil {
					return fmt.Errorf("fetch sell quote: %w", err)
				}
				in.SellPrice = q.Bid
				in.SellVenueType = q.VenueType
			}

			gas := rt.gasParams(ctx)
			calc := profitapp.NewCalculator(rt.venues, profitapp.Config{
				GasPriceGwei:    gas.PriceGwei,
				ETHPriceUSD:     gas.ETHPriceUSD,
				BaseSlippagePct: rt.cfg.Slippage.BasePct,
			})

			breakdown, err := calc.Calculate(in)
			if err != nil {
				return err
			}
			if err := rt.printBreakdown(breakdown); err != nil {
				return err
			}

			if !breakdown.IsProfitable {
				return errNotProfitable
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pairSpec, "pair", "ETH/USDC", "trading pair")
	cmd.Flags().StringVar(&buyVenue, "buy", "", "venue to buy on")
	cmd.Flags().StringVar(&sellVenue, "sell", "", "venue to sell on")
	cmd.Flags().Float64Var(&buyPrice, "buy-price", 0, "pin the buy price instead of fetching a quote")
	cmd.Flags().Float64Var(&sellPrice, "sell-price", 0, "pin the sell price instead of fetching a quote")
	cmd.Flags().Float64Var(&amount, "amount", 1, "trade size in base currency units")
	cmd.Flags().Float64Var(&liquidityUSD, "liquidity", 0, "assumed pool liquidity in USD for slippage")
	cmd.Flags().BoolVar(&includeWithdrawal, "include-withdrawal", true, "include the buy venue's withdrawal fee")
	cobra.CheckErr(cmd.MarkFlagRequired("buy"))
	cobra.CheckErr(cmd.MarkFlagRequired("sell"))
	return cmd
}

func lookupVenueType(venues *venue.Registry, name string) pricing.VenueType {
	if cfg, ok := venues.Lookup(name); ok && cfg.Type == venue.TypeDEX {
		return pricing.VenueDEX
	}
	return pricing.VenueCEX
}
