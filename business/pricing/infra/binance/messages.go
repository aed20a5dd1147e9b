// Package binance implements a streaming price source backed by Binance's
// public market data feeds, with a REST fallback when the stream is stale.
package binance

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/business/pricing/domain"
)

// WSRequest is a WebSocket subscription request.
type WSRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params,omitempty"`
	ID     int64    `json:"id"`
}

// WSResponse is a WebSocket subscription response.
type WSResponse struct {
	Result json.RawMessage `json:"result"`
	ID     int64           `json:"id"`
}

// StreamEvent is the combined-stream wrapper for all stream messages.
type StreamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// BookTickerEvent is a best bid/ask update.
// Stream: <symbol>@bookTicker
type BookTickerEvent struct {
	UpdateID int64  `json:"u"`
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// ParseBidPrice parses the best bid price.
func (e *BookTickerEvent) ParseBidPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(e.BidPrice)
}

// ParseAskPrice parses the best ask price.
func (e *BookTickerEvent) ParseAskPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(e.AskPrice)
}

// MiniTickerEvent is a rolling 24h statistics update.
// Stream: <symbol>@miniTicker
type MiniTickerEvent struct {
	EventType string `json:"e"` // "24hrMiniTicker"
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	Volume    string `json:"v"` // 24h base asset volume
}

// ParseVolume parses the 24h base asset volume.
func (e *MiniTickerEvent) ParseVolume() (decimal.Decimal, error) {
	return decimal.NewFromString(e.Volume)
}

// BookTickerStream returns the bookTicker stream name for a symbol.
func BookTickerStream(symbol string) string {
	return strings.ToLower(symbol) + "@bookTicker"
}

// MiniTickerStream returns the miniTicker stream name for a symbol.
func MiniTickerStream(symbol string) string {
	return strings.ToLower(symbol) + "@miniTicker"
}

// symbolFor converts a pair to Binance symbol format (ETH/USDC -> ETHUSDC).
func symbolFor(pair domain.Pair) string {
	return pair.Base + pair.Quote
}

// extractSymbol extracts the uppercased symbol from a stream name
// ("ethusdc@bookTicker" -> "ETHUSDC").
func extractSymbol(stream string) string {
	if idx := strings.Index(stream, "@"); idx > 0 {
		return strings.ToUpper(stream[:idx])
	}
	return strings.ToUpper(stream)
}
