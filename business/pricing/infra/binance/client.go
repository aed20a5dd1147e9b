package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/logger"
	"github.com/fd1az/arb-finder/internal/wsconn"
)

const (
	instrumentationName = "business/pricing/binance"

	// Binance WebSocket endpoints
	BaseWSURL     = "wss://stream.binance.com:9443"
	DataStreamURL = "wss://data-stream.binance.vision"

	// Binance drops connections idle for more than 3 minutes.
	keepAliveInterval = 2 * time.Minute
)

// ClientConfig holds configuration for the Binance stream client.
type ClientConfig struct {
	BaseURL string
	Symbols []string // e.g. "ETHUSDC"
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	messagesReceived metric.Int64Counter
	tickersReceived  metric.Int64Counter
	parseErrors      metric.Int64Counter
	subscriptions    metric.Int64UpDownCounter
}

// Client is a Binance combined-streams WebSocket client.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	onBookTicker func(*BookTickerEvent)
	onMiniTicker func(*MiniTickerEvent)
	handlersMu   sync.RWMutex

	subscriptions map[string]struct{}
	subsMu        sync.RWMutex
	nextID        atomic.Int64

	stopKeepAlive chan struct{}
	running       atomic.Bool

	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a new Binance stream client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseWSURL
	}

	c := &Client{
		config:        cfg,
		logger:        log,
		subscriptions: make(map[string]struct{}),
		stopKeepAlive: make(chan struct{}),
		tracer:        otel.Tracer(instrumentationName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(instrumentationName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.messagesReceived, err = meter.Int64Counter(
		"binance_messages_total",
		metric.WithDescription("Total stream messages received"),
	)
	if err != nil {
		return err
	}

	c.metrics.tickersReceived, err = meter.Int64Counter(
		"binance_tickers_total",
		metric.WithDescription("Total ticker events received"),
	)
	if err != nil {
		return err
	}

	c.metrics.parseErrors, err = meter.Int64Counter(
		"binance_parse_errors_total",
		metric.WithDescription("Message parse errors"),
	)
	if err != nil {
		return err
	}

	c.metrics.subscriptions, err = meter.Int64UpDownCounter(
		"binance_subscriptions",
		metric.WithDescription("Active stream subscriptions"),
	)
	return err
}

// OnBookTicker registers a handler for best bid/ask events.
func (c *Client) OnBookTicker(handler func(*BookTickerEvent)) {
	c.handlersMu.Lock()
	c.onBookTicker = handler
	c.handlersMu.Unlock()
}

// OnMiniTicker registers a handler for 24h statistics events.
func (c *Client) OnMiniTicker(handler func(*MiniTickerEvent)) {
	c.handlersMu.Lock()
	c.onMiniTicker = handler
	c.handlersMu.Unlock()
}

// Connect establishes the WebSocket connection. The combined streams URL
// subscribes to every configured symbol up front.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "binance.connect",
		trace.WithAttributes(attribute.StringSlice("symbols", c.config.Symbols)),
	)
	defer span.End()

	wsURL, err := c.buildStreamURL()
	if err != nil {
		return err
	}

	conn, err := wsconn.New(wsconn.DefaultConfig(wsURL, "binance"))
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("failed to create stream connection"))
	}
	conn.OnMessage(c.handleMessage)

	if err := conn.Connect(ctx); err != nil {
		span.RecordError(err)
		return apperror.New(apperror.CodeStreamUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to Binance"))
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.subsMu.Lock()
	for _, sym := range c.config.Symbols {
		c.subscriptions[BookTickerStream(sym)] = struct{}{}
		c.subscriptions[MiniTickerStream(sym)] = struct{}{}
	}
	c.subsMu.Unlock()

	c.metrics.subscriptions.Add(ctx, int64(len(c.config.Symbols)*2))

	c.running.Store(true)
	go c.keepAlive()

	c.logger.Info(ctx, "binance stream connected",
		"url", wsURL, "symbols", c.config.Symbols)

	return nil
}

// buildStreamURL constructs the combined streams URL:
// /stream?streams=ethusdc@bookTicker/ethusdc@miniTicker/...
func (c *Client) buildStreamURL() (string, error) {
	if len(c.config.Symbols) == 0 {
		return "", apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("no symbols configured"))
	}

	streams := make([]string, 0, len(c.config.Symbols)*2)
	for _, sym := range c.config.Symbols {
		streams = append(streams, BookTickerStream(sym), MiniTickerStream(sym))
	}

	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")

	return u.String(), nil
}

func (c *Client) handleMessage(ctx context.Context, data []byte) {
	c.metrics.messagesReceived.Add(ctx, 1)

	var event StreamEvent
	if err := json.Unmarshal(data, &event); err != nil || event.Stream == "" {
		// Subscription confirmations arrive without the stream wrapper.
		var resp WSResponse
		if json.Unmarshal(data, &resp) == nil && resp.ID != 0 {
			return
		}
		c.metrics.parseErrors.Add(ctx, 1)
		return
	}

	c.routeStreamEvent(ctx, &event)
}

func (c *Client) routeStreamEvent(ctx context.Context, event *StreamEvent) {
	switch {
	case strings.HasSuffix(event.Stream, "@bookTicker"):
		var ticker BookTickerEvent
		if err := json.Unmarshal(event.Data, &ticker); err != nil {
			c.metrics.parseErrors.Add(ctx, 1)
			return
		}
		c.metrics.tickersReceived.Add(ctx, 1)

		c.handlersMu.RLock()
		handler := c.onBookTicker
		c.handlersMu.RUnlock()
		if handler != nil {
			handler(&ticker)
		}

	case strings.HasSuffix(event.Stream, "@miniTicker"):
		var ticker MiniTickerEvent
		if err := json.Unmarshal(event.Data, &ticker); err != nil {
			c.metrics.parseErrors.Add(ctx, 1)
			return
		}

		c.handlersMu.RLock()
		handler := c.onMiniTicker
		c.handlersMu.RUnlock()
		if handler != nil {
			handler(&ticker)
		}
	}
}

// Subscribe adds stream subscriptions on the live connection.
func (c *Client) Subscribe(ctx context.Context, streams ...string) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return apperror.New(apperror.CodeStreamUnavailable,
			apperror.WithContext("not connected"))
	}

	req := WSRequest{
		Method: "SUBSCRIBE",
		Params: streams,
		ID:     c.nextID.Add(1),
	}
	if err := conn.SendJSON(ctx, req); err != nil {
		return err
	}

	c.subsMu.Lock()
	for _, s := range streams {
		c.subscriptions[s] = struct{}{}
	}
	c.subsMu.Unlock()

	c.metrics.subscriptions.Add(ctx, int64(len(streams)))

	return nil
}

// Unsubscribe removes stream subscriptions.
func (c *Client) Unsubscribe(ctx context.Context, streams ...string) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return nil
	}

	req := WSRequest{
		Method: "UNSUBSCRIBE",
		Params: streams,
		ID:     c.nextID.Add(1),
	}
	if err := conn.SendJSON(ctx, req); err != nil {
		return err
	}

	c.subsMu.Lock()
	for _, s := range streams {
		delete(c.subscriptions, s)
	}
	c.subsMu.Unlock()

	c.metrics.subscriptions.Add(ctx, -int64(len(streams)))

	return nil
}

// keepAlive sends a LIST_SUBSCRIPTIONS request inside Binance's idle window.
func (c *Client) keepAlive() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopKeepAlive:
			return
		case <-ticker.C:
		}

		if !c.running.Load() {
			return
		}

		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		if conn == nil {
			continue
		}

		req := WSRequest{Method: "LIST_SUBSCRIPTIONS", ID: c.nextID.Add(1)}
		if err := conn.SendJSON(context.Background(), req); err != nil {
			c.logger.Warn(context.Background(), "keep-alive failed", "error", err)
		}
	}
}

// Close closes the stream connection.
func (c *Client) Close() error {
	if c.running.Swap(false) {
		close(c.stopKeepAlive)
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected reports whether the stream is up.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}
