// Package ethereum implements the gas oracle against a live Ethereum node.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-finder/business/gas/domain"
	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/cache"
	"github.com/fd1az/arb-finder/internal/circuitbreaker"
	"github.com/fd1az/arb-finder/internal/logger"
)

const instrumentationName = "business/gas/ethereum"

// Config holds the live oracle's tunables.
type Config struct {
	RPCURL      string
	CacheTTL    time.Duration // how long a fetched price stays valid
	MaxGasPrice *big.Int      // clamp against fee spikes
}

// DefaultConfig returns sensible defaults: one-block cache, 500 gwei clamp.
func DefaultConfig(rpcURL string) Config {
	maxGas := new(big.Int)
	maxGas.SetString("500000000000", 10) // 500 gwei

	return Config{
		RPCURL:      rpcURL,
		CacheTTL:    12 * time.Second,
		MaxGasPrice: maxGas,
	}
}

type oracleMetrics struct {
	fetches     metric.Int64Counter
	gwei        metric.Float64Gauge
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// Oracle fetches gas prices over JSON-RPC with caching and a circuit breaker.
type Oracle struct {
	config Config
	log    logger.LoggerInterface

	client   *ethclient.Client
	clientMu sync.RWMutex

	priceCache *cache.Cache[string, *domain.GasPrice]

	cb *circuitbreaker.CircuitBreaker[*big.Int]

	tracer  trace.Tracer
	metrics *oracleMetrics
}

// NewOracle creates a live oracle. Call Connect before the first GasPrice.
func NewOracle(cfg Config, log logger.LoggerInterface) (*Oracle, error) {
	o := &Oracle{
		config:     cfg,
		log:        log,
		priceCache: cache.New[string, *domain.GasPrice](5 * time.Minute),
		cb:         circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer:     otel.Tracer(instrumentationName),
	}

	if err := o.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return o, nil
}

func (o *Oracle) initMetrics() error {
	meter := otel.Meter(instrumentationName)
	var err error

	o.metrics = &oracleMetrics{}

	o.metrics.fetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	o.metrics.gwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Current gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	o.metrics.cacheHits, err = meter.Int64Counter(
		"gas_cache_hits_total",
		metric.WithDescription("Gas price cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	o.metrics.cacheMisses, err = meter.Int64Counter(
		"gas_cache_misses_total",
		metric.WithDescription("Gas price cache misses"),
		metric.WithUnit("{miss}"),
	)
	return err
}

// Connect establishes the connection to the Ethereum node.
func (o *Oracle) Connect(ctx context.Context) error {
	ctx, span := o.tracer.Start(ctx, "gas.connect",
		trace.WithAttributes(attribute.String("url", o.config.RPCURL)),
	)
	defer span.End()

	client, err := ethclient.DialContext(ctx, o.config.RPCURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect gas oracle"))
	}

	o.clientMu.Lock()
	o.client = client
	o.clientMu.Unlock()

	span.SetStatus(codes.Ok, "connected")
	o.log.Info(ctx, "gas oracle connected", "url", o.config.RPCURL)

	return nil
}

// GasPrice returns the current gas price, cached for roughly one block and
// clamped to MaxGasPrice.
func (o *Oracle) GasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := o.tracer.Start(ctx, "gas.price")
	defer span.End()

	if price, found := o.priceCache.Get(ctx, "current"); found {
		o.metrics.cacheHits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return price, nil
	}

	o.metrics.cacheMisses.Add(ctx, 1)
	o.metrics.fetches.Add(ctx, 1)

	o.clientMu.RLock()
	client := o.client
	o.clientMu.RUnlock()

	if client == nil {
		err := apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithContext("gas oracle not connected"))
		span.RecordError(err)
		return nil, err
	}

	wei, err := o.cb.Execute(func() (*big.Int, error) {
		return client.SuggestGasPrice(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		code := apperror.CodeEthereumRPCError
		if circuitbreaker.IsOpen(err) {
			code = apperror.CodeCircuitOpen
		}
		return nil, apperror.New(code,
			apperror.WithCause(err),
			apperror.WithContext("failed to get gas price"))
	}

	if o.config.MaxGasPrice != nil && wei.Cmp(o.config.MaxGasPrice) > 0 {
		span.AddEvent("gas_price_exceeded_max",
			trace.WithAttributes(attribute.String("wei", wei.String())))
		o.log.Warn(ctx, "gas price exceeds max", "wei", wei.String())
		wei = o.config.MaxGasPrice
	}

	price := domain.NewGasPrice(wei)
	o.priceCache.Set(ctx, "current", price, o.config.CacheTTL)
	o.metrics.gwei.Record(ctx, price.Gwei)

	span.SetAttributes(attribute.Float64("gwei", price.Gwei))
	span.SetStatus(codes.Ok, "fetched")

	return price, nil
}

// Close releases the client and stops the cache janitor.
func (o *Oracle) Close() error {
	o.clientMu.Lock()
	defer o.clientMu.Unlock()

	if o.client != nil {
		o.client.Close()
		o.client = nil
	}

	o.priceCache.Close()

	return nil
}
