package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/httpclient"
	"github.com/fd1az/arb-finder/internal/logger"
)

const (
	// Binance REST API endpoints
	BaseAPIURL = "https://api.binance.com"

	bookTickerEndpoint = "/api/v3/ticker/bookTicker"

	httpTimeout = 10 * time.Second
)

// HTTPClientConfig holds configuration for the Binance REST client.
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPClient provides Binance REST access for fallback scenarios.
type HTTPClient struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewHTTPClient creates a new Binance REST client.
func NewHTTPClient(cfg HTTPClientConfig, log logger.LoggerInterface) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &HTTPClient{
		client: client,
		logger: log,
		tracer: otel.Tracer(instrumentationName),
	}, nil
}

// BookTickerResponse is the REST response for the current best bid/ask.
type BookTickerResponse struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	BidQty   string `json:"bidQty"`
	AskPrice string `json:"askPrice"`
	AskQty   string `json:"askQty"`
}

// GetBookTicker fetches the current best bid/ask for a symbol. Used as a
// fallback when the stream has no fresh data.
func (c *HTTPClient) GetBookTicker(ctx context.Context, symbol string) (*BookTickerResponse, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.book_ticker",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	var result BookTickerResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "book_ticker"),
			httpclient.NewLabel("symbol", symbol),
		),
		httpclient.WithResponseErrorHandler(apiErrorHandler),
	).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get(ctx, bookTickerEndpoint)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodePriceSourceError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch book ticker"))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodePriceSourceError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	c.logger.Debug(ctx, "fetched book ticker via REST",
		"symbol", symbol, "bid", result.BidPrice, "ask", result.AskPrice)

	return &result, nil
}

// APIError is an error payload from the Binance REST API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
