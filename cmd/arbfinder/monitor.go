package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	pricingapp "github.com/fd1az/arb-finder/business/pricing/app"
	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	scannerapp "github.com/fd1az/arb-finder/business/scanner/app"
	scannerinfra "github.com/fd1az/arb-finder/business/scanner/infra"
	"github.com/fd1az/arb-finder/pkg/ui"
)

func newMonitorCmd(rt *runtime) *cobra.Command {
	var (
		pairSpec string
		interval time.Duration
		alertPct float64
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Continuously scan one pair and alert on spreads",
		Long: `Monitor rescans a pair on a fixed interval and raises an alert whenever
the best net spread crosses the alert threshold. With --tui it renders
a live dashboard instead of log lines.`,
		Example: `  arbfinder monitor
  arbfinder monitor --pair BTC/USDT --interval 10s --alert 0.5
  arbfinder monitor --tui`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if pairSpec == "" {
				pairSpec = rt.cfg.Scan.Pairs[0]
			}
			pair, err := pricing.ParsePair(pairSpec)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = rt.cfg.Monitor.Interval
			}
			if !cmd.Flags().Changed("alert") {
				alertPct = rt.cfg.Monitor.AlertNetPct
			}

			// No profit floor: the monitor reports everything and lets the
			// alert threshold decide what is interesting.
			scanner, err := rt.newScanner(ctx, 0)
			if err != nil {
				return err
			}

			if rt.tuiMode {
				return runMonitorTUI(ctx, rt, scanner, pair, interval, alertPct)
			}
			return runMonitorConsole(ctx, rt, scanner, pair, interval, alertPct, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&pairSpec, "pair", "", "pair to monitor (default: first configured scan pair)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "scan interval")
	cmd.Flags().Float64Var(&alertPct, "alert", 0, "net spread percent that triggers an alert")
	cmd.Flags().BoolVar(&rt.tuiMode, "tui", false, "render a live dashboard")
	return cmd
}

func runMonitorConsole(ctx context.Context, rt *runtime, scanner *scannerapp.Scanner, pair pricing.Pair, interval time.Duration, alertPct float64, out io.Writer) error {
	reporter := scannerinfra.NewConsoleReporter(out)
	rt.log.Info(ctx, "monitor started",
		"pair", pair.String(), "interval", interval.String(), "alert_net_pct", alertPct)

	// Immediate first scan, then on the interval.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := scanner.Scan(ctx, pair, pricingapp.FetchOptions{Venues: rt.cfg.Scan.Venues})
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			rt.log.Warn(ctx, "scan failed", "error", err)
		case result.Best != nil && result.Best.NetSpreadPct >= alertPct:
			reporter.PrintAlert(result.Best, decimal.NewFromInt(1))
		}

		select {
		case <-ctx.Done():
			rt.log.Info(ctx, "monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func runMonitorTUI(ctx context.Context, rt *runtime, scanner *scannerapp.Scanner, pair pricing.Pair, interval time.Duration, alertPct float64) error {
	model := ui.New(pair.String(), alertPct)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		// Immediate first scan, then on the interval.
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			monitorScanOnce(loopCtx, rt, scanner, pair, alertPct)

			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	// A SIGINT must also tear the dashboard down.
	go func() {
		<-loopCtx.Done()
		if ui.Program != nil {
			ui.Program.Quit()
		}
	}()

	return ui.Run(model)
}

func monitorScanOnce(ctx context.Context, rt *runtime, scanner *scannerapp.Scanner, pair pricing.Pair, alertPct float64) {
	result, err := scanner.Scan(ctx, pair, pricingapp.FetchOptions{Venues: rt.cfg.Scan.Venues})
	if err != nil {
		if ctx.Err() == nil {
			ui.Send(ui.ErrorMsg{Error: err})
		}
		return
	}

	ui.Send(ui.ScanResultMsg{Result: result})
	ui.Send(ui.ConnectionStatusMsg{Name: rt.source.Name(), Connected: true})
	if gp, err := rt.oracle.GasPrice(ctx); err == nil {
		ui.Send(ui.GasPriceMsg{Gwei: gp.Gwei})
	}
	if result.Best != nil && result.Best.NetSpreadPct >= alertPct {
		ui.Send(ui.AlertMsg{Opportunity: result.Best})
	}
}
