package main

import (
	"strings"

	"github.com/spf13/cobra"

	pricingapp "github.com/fd1az/arb-finder/business/pricing/app"
	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
)

func newScanCmd(rt *runtime) *cobra.Command {
	var (
		venues    []string
		venueType string
		minProfit float64
	)

	cmd := &cobra.Command{
		Use:   "scan [pair...]",
		Short: "Scan venues for direct arbitrage",
		Long: `Scan fetches quotes for each pair across venues and evaluates every
buy/sell venue combination. Pairs default to the configured scan list.
Exits 1 when no profitable opportunity is found.`,
		Example: `  arbfinder scan
  arbfinder scan ETH/USDC BTC/USDT
  arbfinder scan ETH/USDC --type dex --min-profit 0.5 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			specs := args
			if len(specs) == 0 {
				specs = rt.cfg.Scan.Pairs
			}
			pairs, err := parsePairs(specs)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("min-profit") {
				minProfit = rt.cfg.Scan.MinProfitPct
			}
			if len(venues) == 0 {
				venues = rt.cfg.Scan.Venues
			}

			scanner, err := rt.newScanner(ctx, minProfit)
			if err != nil {
				return err
			}

			opts := pricingapp.FetchOptions{
				Venues:    venues,
				VenueType: pricing.VenueType(strings.ToUpper(venueType)),
			}
			results, err := scanner.ScanPairs(ctx, pairs, opts)
			if err != nil {
				return err
			}

			found := false
			for _, result := range results {
				if err := rt.printScanResult(result); err != nil {
					return err
				}
				if result.Best != nil && result.Best.IsProfitable() {
					found = true
				}
			}
			if !found {
				return errNotProfitable
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&venues, "venue", nil, "restrict the scan to these venues")
	cmd.Flags().StringVar(&venueType, "type", "", "restrict to a venue type: cex or dex")
	cmd.Flags().Float64Var(&minProfit, "min-profit", 0, "minimum net spread percent to report")
	return cmd
}
