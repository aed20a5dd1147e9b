package binance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/logger"
)

// Config holds configuration for the Binance provider.
type Config struct {
	WebSocketURL   string        // empty = default
	HTTPURL        string        // empty = default
	Pairs          []domain.Pair // pairs to stream
	StaleTimeout   time.Duration // stream data older than this triggers fallback
	EnableFallback bool          // REST fallback when stream data is stale
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(pairs []domain.Pair) Config {
	return Config{
		Pairs:          pairs,
		StaleTimeout:   5 * time.Second,
		EnableFallback: true,
	}
}

// tickerState is the latest stream observation for one symbol.
type tickerState struct {
	bid        decimal.Decimal
	ask        decimal.Decimal
	volume     decimal.Decimal
	lastUpdate time.Time
	mu         sync.RWMutex
}

// Provider implements the pricing Source port on top of the Binance stream.
// Quotes come from the bookTicker feed; 24h volume from the miniTicker feed;
// a REST fallback covers startup and stale-stream windows.
type Provider struct {
	config Config
	logger logger.LoggerInterface

	client     *Client
	httpClient *HTTPClient

	tickers map[string]*tickerState
	pairs   map[string]domain.Pair

	tracer trace.Tracer
}

// NewProvider creates a Binance stream provider. Call Connect before use.
func NewProvider(cfg Config, log logger.LoggerInterface) (*Provider, error) {
	symbols := make([]string, 0, len(cfg.Pairs))
	tickers := make(map[string]*tickerState, len(cfg.Pairs))
	pairs := make(map[string]domain.Pair, len(cfg.Pairs))
	for _, pair := range cfg.Pairs {
		sym := symbolFor(pair)
		symbols = append(symbols, sym)
		tickers[sym] = &tickerState{}
		pairs[sym] = pair
	}

	client, err := NewClient(ClientConfig{
		BaseURL: cfg.WebSocketURL,
		Symbols: symbols,
	}, log)
	if err != nil {
		return nil, err
	}

	var httpClient *HTTPClient
	if cfg.EnableFallback {
		httpClient, err = NewHTTPClient(HTTPClientConfig{BaseURL: cfg.HTTPURL}, log)
		if err != nil {
			log.Warn(context.Background(), "REST fallback unavailable", "error", err)
		}
	}

	p := &Provider{
		config:     cfg,
		logger:     log,
		client:     client,
		httpClient: httpClient,
		tickers:    tickers,
		pairs:      pairs,
		tracer:     otel.Tracer(instrumentationName),
	}

	client.OnBookTicker(p.handleBookTicker)
	client.OnMiniTicker(p.handleMiniTicker)

	return p, nil
}

// Connect starts the stream.
func (p *Provider) Connect(ctx context.Context) error {
	return p.client.Connect(ctx)
}

// Close stops the stream.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Name implements app.Source.
func (p *Provider) Name() string { return "binance" }

// Venues implements app.Source.
func (p *Provider) Venues(t domain.VenueType) []string {
	if t == domain.VenueDEX {
		return nil
	}
	return []string{"binance"}
}

// FetchQuote implements app.Source. It serves the latest stream observation,
// or the REST book ticker when the stream has nothing fresh.
func (p *Provider) FetchQuote(ctx context.Context, pair domain.Pair, _ string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch_quote",
		trace.WithAttributes(attribute.String("pair", pair.String())),
	)
	defer span.End()

	symbol := symbolFor(pair)

	state, ok := p.tickers[symbol]
	if !ok {
		return nil, apperror.New(apperror.CodePairNotQuoted,
			apperror.WithContext(fmt.Sprintf("symbol %s not subscribed", symbol)))
	}

	state.mu.RLock()
	bid, ask, volume := state.bid, state.ask, state.volume
	age := time.Since(state.lastUpdate)
	state.mu.RUnlock()

	if bid.IsZero() || age > p.config.StaleTimeout {
		if p.httpClient != nil {
			span.SetAttributes(attribute.String("source", "http_fallback"))
			return p.fetchViaREST(ctx, pair, symbol, volume)
		}
		return nil, apperror.New(apperror.CodePriceStale,
			apperror.WithContext(fmt.Sprintf("no fresh stream data for %s", symbol)))
	}

	span.SetAttributes(attribute.String("source", "stream"))

	return domain.NewQuote("Binance", domain.VenueCEX, pair, bid, ask, volume, "")
}

// fetchViaREST fetches the best bid/ask over REST, reusing the last streamed
// volume figure when one exists.
func (p *Provider) fetchViaREST(ctx context.Context, pair domain.Pair, symbol string, volume decimal.Decimal) (*domain.Quote, error) {
	ticker, err := p.httpClient.GetBookTicker(ctx, symbol)
	if err != nil {
		return nil, err
	}

	bid, err := decimal.NewFromString(ticker.BidPrice)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidFormat, apperror.WithCause(err))
	}
	ask, err := decimal.NewFromString(ticker.AskPrice)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidFormat, apperror.WithCause(err))
	}

	// Refresh the cached state so the monitor sees the fallback data too.
	if state, ok := p.tickers[symbol]; ok {
		state.mu.Lock()
		state.bid = bid
		state.ask = ask
		state.lastUpdate = time.Now()
		state.mu.Unlock()
	}

	p.logger.Info(ctx, "quote served via REST fallback", "symbol", symbol)

	return domain.NewQuote("Binance", domain.VenueCEX, pair, bid, ask, volume, "")
}

func (p *Provider) handleBookTicker(event *BookTickerEvent) {
	state, ok := p.tickers[event.Symbol]
	if !ok {
		return
	}

	bid, err := event.ParseBidPrice()
	if err != nil {
		return
	}
	ask, err := event.ParseAskPrice()
	if err != nil {
		return
	}

	state.mu.Lock()
	state.bid = bid
	state.ask = ask
	state.lastUpdate = time.Now()
	state.mu.Unlock()
}

func (p *Provider) handleMiniTicker(event *MiniTickerEvent) {
	state, ok := p.tickers[event.Symbol]
	if !ok {
		return
	}

	volume, err := event.ParseVolume()
	if err != nil {
		return
	}

	state.mu.Lock()
	state.volume = volume
	state.mu.Unlock()
}
