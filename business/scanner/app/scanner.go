package app

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	pricingapp "github.com/fd1az/arb-finder/business/pricing/app"
	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/business/scanner/domain"
	"github.com/fd1az/arb-finder/internal/logger"
)

const instrumentationName = "business/scanner"

var (
	hundred = decimal.NewFromInt(100)

	volumeFloorLow = decimal.NewFromInt(1_000)
	volumeFloorMed = decimal.NewFromInt(10_000)
)

var tracer = otel.Tracer(instrumentationName)

type scanMetrics struct {
	scans         metric.Int64Counter
	opportunities metric.Int64Counter
	bestSpread    metric.Float64Gauge
}

func newScanMetrics() (*scanMetrics, error) {
	meter := otel.Meter(instrumentationName)

	scans, err := meter.Int64Counter("arb_scans_total",
		metric.WithDescription("Completed direct arbitrage scans"))
	if err != nil {
		return nil, err
	}
	opportunities, err := meter.Int64Counter("arb_opportunities_found_total",
		metric.WithDescription("Opportunities passing the profit filter"))
	if err != nil {
		return nil, err
	}
	bestSpread, err := meter.Float64Gauge("arb_best_net_spread_pct",
		metric.WithDescription("Best net spread of the latest scan"))
	if err != nil {
		return nil, err
	}

	return &scanMetrics{scans: scans, opportunities: opportunities, bestSpread: bestSpread}, nil
}

// Config tunes the scan driver.
type Config struct {
	// MinProfitPct filters opportunities below this net spread.
	MinProfitPct float64
}

// Scanner drives direct arbitrage detection: fetch quotes for a pair,
// evaluate every ordered venue combination, rank survivors.
type Scanner struct {
	prices    *pricingapp.PriceService
	evaluator *Evaluator
	cfg       Config
	log       *logger.Logger
	metrics   *scanMetrics
}

// NewScanner wires the scan driver.
func NewScanner(prices *pricingapp.PriceService, evaluator *Evaluator, cfg Config, log *logger.Logger) (*Scanner, error) {
	m, err := newScanMetrics()
	if err != nil {
		return nil, err
	}
	return &Scanner{
		prices:    prices,
		evaluator: evaluator,
		cfg:       cfg,
		log:       log.With("component", "scanner"),
		metrics:   m,
	}, nil
}

// Scan evaluates one pair across venues. Fewer than two quotes yields an
// empty result, not an error. Opportunities are filtered to
// net spread >= MinProfitPct and sorted descending.
func (s *Scanner) Scan(ctx context.Context, pair pricing.Pair, opts pricingapp.FetchOptions) (*domain.ScanResult, error) {
	ctx, span := tracer.Start(ctx, "scanner.Scan")
	defer span.End()
	span.SetAttributes(attribute.String("pair", pair.String()))

	quotes, err := s.prices.FetchAll(ctx, pair, opts)
	if err != nil {
		return nil, err
	}

	result := &domain.ScanResult{
		Pair:      pair,
		Quotes:    quotes,
		Timestamp: time.Now(),
	}

	if len(quotes) < 2 {
		s.log.Info(ctx, "not enough quotes to scan", "pair", pair.String(), "quotes", len(quotes))
		s.metrics.scans.Add(ctx, 1)
		return result, nil
	}

	for _, buy := range quotes {
		for _, sell := range quotes {
			if buy.Venue == sell.Venue {
				continue
			}
			opp := s.evaluator.Evaluate(buy, sell)
			if opp != nil && opp.NetSpreadPct >= s.cfg.MinProfitPct {
				result.Opportunities = append(result.Opportunities, opp)
			}
		}
	}

	sort.SliceStable(result.Opportunities, func(i, j int) bool {
		return result.Opportunities[i].NetSpreadPct > result.Opportunities[j].NetSpreadPct
	})
	if len(result.Opportunities) > 0 {
		result.Best = result.Opportunities[0]
	}

	s.metrics.scans.Add(ctx, 1)
	s.metrics.opportunities.Add(ctx, int64(len(result.Opportunities)),
		metric.WithAttributes(attribute.String("pair", pair.String())))
	if result.Best != nil {
		s.metrics.bestSpread.Record(ctx, result.Best.NetSpreadPct)
	}

	s.log.Info(ctx, "scan complete",
		"pair", pair.String(),
		"quotes", len(quotes),
		"opportunities", len(result.Opportunities))
	return result, nil
}

// ScanPairs runs Scan over several pairs sequentially, skipping pairs whose
// fetch failed.
func (s *Scanner) ScanPairs(ctx context.Context, pairs []pricing.Pair, opts pricingapp.FetchOptions) ([]*domain.ScanResult, error) {
	results := make([]*domain.ScanResult, 0, len(pairs))
	for _, pair := range pairs {
		r, err := s.Scan(ctx, pair, opts)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			s.log.Warn(ctx, "pair scan failed", "pair", pair.String(), "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}
