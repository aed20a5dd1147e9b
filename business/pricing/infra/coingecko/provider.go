// Package coingecko implements a live price source backed by the CoinGecko
// simple price API. CoinGecko aggregates across venues, so quotes carry a
// synthetic bid/ask derived from the mid and an assumed spread.
package coingecko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/cache"
	"github.com/fd1az/arb-finder/internal/circuitbreaker"
	"github.com/fd1az/arb-finder/internal/httpclient"
	"github.com/fd1az/arb-finder/internal/logger"
	"github.com/fd1az/arb-finder/internal/ratelimit"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	venueName      = "CoinGecko"
)

// coinIDs maps token symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"ETH":  "ethereum",
	"BTC":  "bitcoin",
	"USDC": "usd-coin",
	"USDT": "tether",
	"BNB":  "binancecoin",
	"SOL":  "solana",
}

// vsCurrencies maps quote tokens to CoinGecko vs_currency codes. Stablecoin
// quotes are priced in USD; CoinGecko has no USDC/USDT vs currency.
var vsCurrencies = map[string]string{
	"USDC": "usd",
	"USDT": "usd",
	"USD":  "usd",
	"BTC":  "btc",
	"ETH":  "eth",
}

// Config holds the provider's tunables.
type Config struct {
	BaseURL           string
	APIKey            string        // demo key header, optional
	CacheTTL          time.Duration // quote cache TTL
	SpreadPct         float64       // assumed full bid/ask spread in percent
	RequestsPerMinute int
	Timeout           time.Duration
}

// DefaultConfig matches the free API tier: 30 req/min, 10 s cache, 0.05%
// assumed spread.
func DefaultConfig() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		CacheTTL:          10 * time.Second,
		SpreadPct:         0.05,
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
	}
}

// Provider implements the pricing Source port against CoinGecko.
type Provider struct {
	config  Config
	http    httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[*priceEntry]
	quotes  *cache.Cache[string, *domain.Quote]
	log     logger.LoggerInterface
}

// priceEntry is the per-coin payload in a simple/price response.
type priceEntry map[string]float64

// NewProvider creates a CoinGecko provider.
func NewProvider(cfg Config, log logger.LoggerInterface) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["x-cg-demo-api-key"] = cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("coingecko"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithHeaders(headers),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &Provider{
		config:  cfg,
		http:    client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		cb:      circuitbreaker.New[*priceEntry](circuitbreaker.DefaultConfig("coingecko")),
		quotes:  cache.New[string, *domain.Quote](time.Minute),
		log:     log,
	}, nil
}

// Name implements app.Source.
func (p *Provider) Name() string { return "coingecko" }

// Venues implements app.Source. CoinGecko is a single aggregated CEX-style
// venue.
func (p *Provider) Venues(t domain.VenueType) []string {
	if t == domain.VenueDEX {
		return nil
	}
	return []string{"coingecko"}
}

// FetchQuote implements app.Source. The venue argument is ignored: CoinGecko
// serves one aggregate book.
func (p *Provider) FetchQuote(ctx context.Context, pair domain.Pair, _ string) (*domain.Quote, error) {
	if q, ok := p.quotes.Get(ctx, pair.String()); ok {
		return q, nil
	}

	coinID, ok := coinIDs[pair.Base]
	if !ok {
		return nil, apperror.New(apperror.CodePairNotQuoted,
			apperror.WithContext(fmt.Sprintf("no CoinGecko id for %s", pair.Base)))
	}
	vs, ok := vsCurrencies[pair.Quote]
	if !ok {
		return nil, apperror.New(apperror.CodePairNotQuoted,
			apperror.WithContext(fmt.Sprintf("no CoinGecko vs currency for %s", pair.Quote)))
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	entry, err := p.cb.Execute(func() (*priceEntry, error) {
		return p.fetch(ctx, coinID, vs)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext("coingecko circuit open"))
		}
		return nil, err
	}

	quote, err := p.buildQuote(pair, vs, *entry)
	if err != nil {
		return nil, err
	}

	p.quotes.Set(ctx, pair.String(), quote, p.config.CacheTTL)
	p.log.Debug(ctx, "coingecko quote fetched",
		"pair", pair.String(), "mid", quote.Mid.String())

	return quote, nil
}

func (p *Provider) fetch(ctx context.Context, coinID, vs string) (*priceEntry, error) {
	result := map[string]priceEntry{}

	resp, err := p.http.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "simple_price")),
	).
		SetQueryParams(map[string]string{
			"ids":              coinID,
			"vs_currencies":    vs,
			"include_24hr_vol": "true",
		}).
		SetResult(&result).
		Get(ctx, "/simple/price")
	if err != nil {
		return nil, apperror.New(apperror.CodePriceSourceError,
			apperror.WithCause(err),
			apperror.WithContext("coingecko request failed"))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodePriceSourceError,
			apperror.WithContext(fmt.Sprintf("coingecko returned %d", resp.StatusCode)))
	}

	entry, ok := result[coinID]
	if !ok {
		return nil, apperror.New(apperror.CodePairNotQuoted,
			apperror.WithContext(fmt.Sprintf("no price for %s", coinID)))
	}
	return &entry, nil
}

// buildQuote synthesizes a bid/ask around CoinGecko's aggregate mid using the
// configured spread assumption.
func (p *Provider) buildQuote(pair domain.Pair, vs string, entry priceEntry) (*domain.Quote, error) {
	midFloat, ok := entry[vs]
	if !ok || midFloat <= 0 {
		return nil, apperror.New(apperror.CodePairNotQuoted,
			apperror.WithContext(fmt.Sprintf("no %s price for %s", strings.ToUpper(vs), pair)))
	}

	mid := decimal.NewFromFloat(midFloat)
	half := decimal.NewFromFloat(p.config.SpreadPct / 200)
	bid := mid.Mul(decimal.NewFromInt(1).Sub(half))
	ask := mid.Mul(decimal.NewFromInt(1).Add(half))

	volume := decimal.Zero
	if v, ok := entry[vs+"_24h_vol"]; ok && v > 0 {
		// Volume comes back in quote units; the scanners expect base units.
		volume = decimal.NewFromFloat(v / midFloat)
	}

	return domain.NewQuote(venueName, domain.VenueCEX, pair, bid, ask, volume, "")
}

// Close stops the quote cache janitor.
func (p *Provider) Close() error {
	p.quotes.Close()
	return nil
}
