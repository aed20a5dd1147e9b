// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/fd1az/arb-finder/business/pricing/domain"
)

// Source supplies quotes for trading pairs. Implementations live in infra
// (simulated book, CoinGecko, Binance stream) and own their own transport,
// caching and retry concerns.
type Source interface {
	// Name identifies the source in logs and health checks.
	Name() string

	// FetchQuote returns the venue's current quote for pair.
	// CodePairNotQuoted when the venue does not trade the pair.
	FetchQuote(ctx context.Context, pair domain.Pair, venue string) (*domain.Quote, error)

	// Venues lists venue IDs the source can quote, filtered by type ("" for all).
	Venues(t domain.VenueType) []string
}

// PairLister is implemented by sources that can enumerate every pair a venue
// trades, as needed for triangular search.
type PairLister interface {
	ListPairs(ctx context.Context, venue string) ([]domain.Pair, error)
}
