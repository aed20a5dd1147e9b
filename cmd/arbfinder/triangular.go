package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fd1az/arb-finder/business/pricing/infra/simulated"
	triapp "github.com/fd1az/arb-finder/business/triangular/app"
	tridomain "github.com/fd1az/arb-finder/business/triangular/domain"
)

func newTriangularCmd(rt *runtime) *cobra.Command {
	var (
		venueName string
		minProfit float64
	)

	cmd := &cobra.Command{
		Use:   "triangular [tokenA tokenB tokenC]",
		Short: "Find triangular arbitrage cycles on one venue",
		Long: `Triangular search enumerates three-hop cycles in a venue's pair book and
prices every ordering of each triangle. With three tokens given, only
that triangle is analyzed. Exits 1 when no cycle nets above the
threshold.`,
		Example: `  arbfinder triangular
  arbfinder triangular --venue kraken --min-profit 0.2
  arbfinder triangular USDT BTC ETH`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("expected exactly three tokens, got %d", len(args))
			}

			if venueName == "" {
				venueName = rt.cfg.Triangular.Venue
			}
			if !cmd.Flags().Changed("min-profit") {
				minProfit = rt.cfg.Triangular.MinProfitPct
			}

			pairs := venueTradingPairs(rt, venueName)
			if len(pairs) == 0 {
				return fmt.Errorf("no pair book for venue %q", venueName)
			}

			finder := triapp.NewFinder(minProfit)

			var paths []*tridomain.Path
			if len(args) == 3 {
				path := finder.AnalyzeTriangle(args[0], args[1], args[2], venueName, pairs)
				if path != nil {
					paths = append(paths, path)
				}
			} else {
				paths = finder.FindOpportunities(venueName, pairs)
			}

			if err := rt.printTriangularPaths(paths); err != nil {
				return err
			}

			for _, p := range paths {
				if p.IsProfitable() {
					return nil
				}
			}
			return errNotProfitable
		},
	}

	cmd.Flags().StringVar(&venueName, "venue", "", "venue whose pair book to search")
	cmd.Flags().Float64Var(&minProfit, "min-profit", 0, "minimum net profit percent to report")
	return cmd
}

// venueTradingPairs loads the venue's pair book. The built-in book is the
// only source carrying full per-venue books, so triangular search always
// reads from it regardless of the configured quote source.
func venueTradingPairs(rt *runtime, venueName string) []tridomain.TradingPair {
	book, ok := rt.source.(*simulated.Provider)
	if !ok {
		book = simulated.NewProvider(rt.venues)
	}

	entries := book.VenueBook(venueName)
	pairs := make([]tridomain.TradingPair, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, tridomain.TradingPair{
			Base:    e.Pair.Base,
			Quote:   e.Pair.Quote,
			Bid:     e.Bid,
			Ask:     e.Ask,
			FeeRate: e.FeeRate,
			Venue:   venueName,
		})
	}
	return pairs
}
