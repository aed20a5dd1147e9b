package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

var ethUSDC = domain.MustPair("ETH/USDC")

func TestStreamQuote(t *testing.T) {
	cfg := DefaultConfig([]domain.Pair{ethUSDC})
	cfg.EnableFallback = false

	p, err := NewProvider(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	p.handleBookTicker(&BookTickerEvent{
		Symbol:   "ETHUSDC",
		BidPrice: "2541.20",
		AskPrice: "2541.50",
	})
	p.handleMiniTicker(&MiniTickerEvent{
		Symbol: "ETHUSDC",
		Volume: "125000",
	})

	q, err := p.FetchQuote(context.Background(), ethUSDC, "")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if q.Venue != "Binance" {
		t.Errorf("Venue = %q", q.Venue)
	}
	if q.Bid.String() != "2541.2" || q.Ask.String() != "2541.5" {
		t.Errorf("bid/ask = %s/%s", q.Bid, q.Ask)
	}
	if q.Volume24h.String() != "125000" {
		t.Errorf("Volume24h = %s", q.Volume24h)
	}
}

func TestStaleStreamWithoutFallback(t *testing.T) {
	cfg := DefaultConfig([]domain.Pair{ethUSDC})
	cfg.EnableFallback = false

	p, err := NewProvider(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	_, err = p.FetchQuote(context.Background(), ethUSDC, "")
	if apperror.GetCode(err) != apperror.CodePriceStale {
		t.Errorf("code = %v, want %v", apperror.GetCode(err), apperror.CodePriceStale)
	}
}

func TestUnsubscribedPair(t *testing.T) {
	cfg := DefaultConfig([]domain.Pair{ethUSDC})
	cfg.EnableFallback = false

	p, err := NewProvider(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	_, err = p.FetchQuote(context.Background(), domain.MustPair("BTC/USDC"), "")
	if apperror.GetCode(err) != apperror.CodePairNotQuoted {
		t.Errorf("code = %v, want %v", apperror.GetCode(err), apperror.CodePairNotQuoted)
	}
}

func TestRESTFallback(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.URL.Query().Get("symbol"); got != "ETHUSDC" {
			t.Errorf("symbol = %q", got)
		}
		fmt.Fprint(w, `{"symbol":"ETHUSDC","bidPrice":"2540.00","bidQty":"1","askPrice":"2540.50","askQty":"1"}`)
	}))
	defer srv.Close()

	cfg := DefaultConfig([]domain.Pair{ethUSDC})
	cfg.HTTPURL = srv.URL
	cfg.StaleTimeout = time.Minute

	p, err := NewProvider(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	ctx := context.Background()

	q, err := p.FetchQuote(ctx, ethUSDC, "")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if q.Bid.String() != "2540" || q.Ask.String() != "2540.5" {
		t.Errorf("bid/ask = %s/%s", q.Bid, q.Ask)
	}

	// The fallback refreshes the cached state; a second fetch inside the
	// staleness window must not hit REST again.
	if _, err := p.FetchQuote(ctx, ethUSDC, ""); err != nil {
		t.Fatalf("second FetchQuote: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("REST hits = %d, want 1", got)
	}
}

func TestStreamNames(t *testing.T) {
	if got := symbolFor(ethUSDC); got != "ETHUSDC" {
		t.Errorf("symbolFor = %q", got)
	}
	if got := BookTickerStream("ETHUSDC"); got != "ethusdc@bookTicker" {
		t.Errorf("BookTickerStream = %q", got)
	}
	if got := MiniTickerStream("ETHUSDC"); got != "ethusdc@miniTicker" {
		t.Errorf("MiniTickerStream = %q", got)
	}
	if got := extractSymbol("ethusdc@bookTicker"); got != "ETHUSDC" {
		t.Errorf("extractSymbol = %q", got)
	}
}
