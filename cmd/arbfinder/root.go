package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	gasapp "github.com/fd1az/arb-finder/business/gas/app"
	gasethereum "github.com/fd1az/arb-finder/business/gas/infra/ethereum"
	gasstatic "github.com/fd1az/arb-finder/business/gas/infra/static"
	pricingapp "github.com/fd1az/arb-finder/business/pricing/app"
	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/business/pricing/infra/binance"
	"github.com/fd1az/arb-finder/business/pricing/infra/coingecko"
	"github.com/fd1az/arb-finder/business/pricing/infra/simulated"
	profitdomain "github.com/fd1az/arb-finder/business/profit/domain"
	scannerapp "github.com/fd1az/arb-finder/business/scanner/app"
	scandomain "github.com/fd1az/arb-finder/business/scanner/domain"
	scannerinfra "github.com/fd1az/arb-finder/business/scanner/infra"
	tridomain "github.com/fd1az/arb-finder/business/triangular/domain"
	"github.com/fd1az/arb-finder/internal/apm"
	"github.com/fd1az/arb-finder/internal/config"
	"github.com/fd1az/arb-finder/internal/health"
	"github.com/fd1az/arb-finder/internal/logger"
	"github.com/fd1az/arb-finder/internal/metrics"
	"github.com/fd1az/arb-finder/internal/venue"
)

// errNotProfitable signals a clean "nothing found" outcome. Execute maps it
// to exit code 1 without printing an error, so scripts can branch on it.
var errNotProfitable = errors.New("no profitable opportunity")

// outputJSON is the machine-readable output mode.
const outputJSON = "json"

type rootOptions struct {
	configPath string
	logLevel   string
	gasPrice   float64
	ethPrice   float64
}

// runtime holds the wired application: config, logger, price source, gas
// oracle and optional telemetry. Built once in PersistentPreRunE.
type runtime struct {
	cfg    *config.Config
	log    *logger.Logger
	venues *venue.Registry
	source pricingapp.Source
	prices *pricingapp.PriceService
	oracle gasapp.Oracle

	output  string
	tuiMode bool

	traces  apm.TraceProvider
	meter   metrics.MeterProvider
	promSrv *http.Server
	health  *health.Server
	closers []func() error
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	rt := &runtime{}
	cmd := newRootCmd(rt)

	err := cmd.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rt.close(shutdownCtx)

	if err != nil {
		if errors.Is(err, errNotProfitable) {
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(rt *runtime) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "arbfinder",
		Short: "Cryptocurrency arbitrage detection engine",
		Long: `arbfinder detects arbitrage opportunities across crypto venues:
direct (buy low on one venue, sell high on another), triangular
(three-hop cycles on a single venue), and itemized profit breakdowns
accounting for fees, gas and slippage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd.Context(), opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file")
	pf.StringVarP(&rt.output, "output", "o", "text", "output format: text or json")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.Float64Var(&opts.gasPrice, "gas-price", 0, "gas price in gwei (overrides config)")
	pf.Float64Var(&opts.ethPrice, "eth-price", 0, "ETH price in USD (overrides config)")

	cmd.AddCommand(
		newScanCmd(rt),
		newTriangularCmd(rt),
		newMonitorCmd(rt),
		newCalcCmd(rt),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// No runtime needed for version output.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "arbfinder %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}

func (rt *runtime) init(ctx context.Context, opts rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.gasPrice > 0 {
		cfg.Gas.PriceGwei = opts.gasPrice
	}
	if opts.ethPrice > 0 {
		cfg.Gas.ETHPriceUSD = opts.ethPrice
	}
	if opts.logLevel != "" {
		cfg.App.LogLevel = opts.logLevel
	}
	cfg.Monitor.TUIMode = rt.tuiMode

	// The TUI owns the terminal; logs would corrupt it.
	logOut := io.Writer(os.Stderr)
	if rt.tuiMode {
		logOut = io.Discard
	}

	rt.cfg = cfg
	rt.log = logger.New(logOut, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	rt.venues = venue.DefaultRegistry()

	if err := rt.initSource(ctx); err != nil {
		return err
	}
	if err := rt.initOracle(ctx); err != nil {
		return err
	}
	rt.prices = pricingapp.NewPriceService(rt.source, nil, rt.log)

	if cfg.Telemetry.Enabled {
		if err := rt.initTelemetry(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (rt *runtime) initSource(ctx context.Context) error {
	switch rt.cfg.PriceSource.Mode {
	case config.SourceSimulated:
		rt.source = simulated.NewProvider(rt.venues)

	case config.SourceCoinGecko:
		gc := coingecko.DefaultConfig()
		if rt.cfg.PriceSource.CoinGeckoURL != "" {
			gc.BaseURL = rt.cfg.PriceSource.CoinGeckoURL
		}
		gc.APIKey = rt.cfg.PriceSource.CoinGeckoAPIKey
		if rt.cfg.PriceSource.RequestsPerMin > 0 {
			gc.RequestsPerMinute = rt.cfg.PriceSource.RequestsPerMin
		}
		p, err := coingecko.NewProvider(gc, rt.log)
		if err != nil {
			return err
		}
		rt.source = p
		rt.closers = append(rt.closers, p.Close)

	case config.SourceBinance:
		pairs, err := parsePairs(rt.cfg.Scan.Pairs)
		if err != nil {
			return err
		}
		bc := binance.DefaultConfig(pairs)
		bc.WebSocketURL = rt.cfg.PriceSource.BinanceWSURL
		bc.HTTPURL = rt.cfg.PriceSource.BinanceHTTPURL
		if rt.cfg.PriceSource.StaleTimeout > 0 {
			bc.StaleTimeout = rt.cfg.PriceSource.StaleTimeout
		}
		p, err := binance.NewProvider(bc, rt.log)
		if err != nil {
			return err
		}
		if err := p.Connect(ctx); err != nil {
			return err
		}
		rt.source = p
		rt.closers = append(rt.closers, p.Close)

	default:
		return fmt.Errorf("unknown price source %q", rt.cfg.PriceSource.Mode)
	}
	return nil
}

func (rt *runtime) initOracle(ctx context.Context) error {
	if rt.cfg.Gas.RPCURL == "" {
		rt.oracle = gasstatic.NewOracle(rt.cfg.Gas.PriceGwei)
		return nil
	}

	o, err := gasethereum.NewOracle(gasethereum.DefaultConfig(rt.cfg.Gas.RPCURL), rt.log)
	if err != nil {
		return err
	}
	if err := o.Connect(ctx); err != nil {
		return err
	}
	rt.oracle = o
	rt.closers = append(rt.closers, o.Close)
	return nil
}

func (rt *runtime) initTelemetry(ctx context.Context) error {
	cfg := rt.cfg.Telemetry

	tp, err := apm.NewTraceProvider(ctx, apm.Config{
		ServiceName:  cfg.ServiceName,
		Exporter:     apm.Exporter(cfg.TraceExporter),
		OTLPEndpoint: cfg.OTLPEndpoint,
		ZipkinURL:    cfg.ZipkinURL,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	rt.traces = tp

	mp, err := metrics.NewMeterProvider(ctx,
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
	)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	rt.meter = mp
	rt.promSrv = metrics.ServePrometheus(cfg.PrometheusPort)
	rt.log.Info(ctx, "prometheus metrics server started", "port", cfg.PrometheusPort)

	rt.health = health.NewServer(cfg.HealthPort, version)
	sourceName := rt.source.Name()
	rt.health.RegisterCheck("price_source", func(ctx context.Context) (bool, string) {
		return true, sourceName
	})
	if err := rt.health.Start(); err != nil {
		rt.log.Warn(ctx, "failed to start health server", "error", err)
	}
	return nil
}

func (rt *runtime) close(ctx context.Context) {
	for _, c := range rt.closers {
		_ = c()
	}
	if rt.health != nil {
		_ = rt.health.Stop(ctx)
	}
	if rt.promSrv != nil {
		_ = rt.promSrv.Shutdown(ctx)
	}
	if rt.meter != nil {
		_ = rt.meter.Shutdown(ctx)
	}
	if rt.traces != nil {
		_ = rt.traces.Stop()
	}
}

// gasParams resolves gas reference prices: the oracle's latest observation
// when available, the configured figure otherwise.
func (rt *runtime) gasParams(ctx context.Context) scannerapp.GasParams {
	gwei := rt.cfg.Gas.PriceGwei
	if gp, err := rt.oracle.GasPrice(ctx); err == nil {
		gwei = gp.Gwei
	} else {
		rt.log.Warn(ctx, "gas oracle unavailable, using configured price", "error", err)
	}
	return scannerapp.GasParams{PriceGwei: gwei, ETHPriceUSD: rt.cfg.Gas.ETHPriceUSD}
}

func (rt *runtime) newScanner(ctx context.Context, minProfitPct float64) (*scannerapp.Scanner, error) {
	eval := scannerapp.NewEvaluator(rt.venues, rt.gasParams(ctx))
	return scannerapp.NewScanner(rt.prices, eval, scannerapp.Config{MinProfitPct: minProfitPct}, rt.log)
}

func (rt *runtime) printScanResult(r *scandomain.ScanResult) error {
	if rt.output == outputJSON {
		return scannerinfra.NewJSONReporter(os.Stdout).PrintScanResult(r)
	}
	scannerinfra.NewConsoleReporter(os.Stdout).PrintScanResult(r)
	return nil
}

func (rt *runtime) printTriangularPaths(paths []*tridomain.Path) error {
	if rt.output == outputJSON {
		return scannerinfra.NewJSONReporter(os.Stdout).PrintTriangularPaths(paths)
	}
	scannerinfra.NewConsoleReporter(os.Stdout).PrintTriangularPaths(paths)
	return nil
}

func (rt *runtime) printBreakdown(b *profitdomain.Breakdown) error {
	if rt.output == outputJSON {
		return scannerinfra.NewJSONReporter(os.Stdout).PrintBreakdown(b)
	}
	scannerinfra.NewConsoleReporter(os.Stdout).PrintBreakdown(b)
	return nil
}

func parsePairs(specs []string) ([]pricing.Pair, error) {
	pairs := make([]pricing.Pair, 0, len(specs))
	for _, s := range specs {
		p, err := pricing.ParsePair(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
