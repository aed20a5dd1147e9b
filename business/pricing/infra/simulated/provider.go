// Package simulated provides a deterministic in-process price source.
package simulated

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/internal/apperror"
	"github.com/fd1az/arb-finder/internal/venue"
)

// Provider serves quotes from the built-in book. It implements app.Source
// and is the default source when no live mode is configured.
type Provider struct {
	venues *venue.Registry
}

// BookPair is one venue-book entry with its executable prices and fee rate.
type BookPair struct {
	Pair    domain.Pair
	Bid     decimal.Decimal
	Ask     decimal.Decimal
	FeeRate decimal.Decimal
}

// NewProvider creates a Provider backed by registry for venue metadata.
func NewProvider(venues *venue.Registry) *Provider {
	return &Provider{venues: venues}
}

func (p *Provider) Name() string { return "simulated" }

// Venues lists every registered venue of the given type.
func (p *Provider) Venues(t domain.VenueType) []string {
	return p.venues.List(venue.Type(t))
}

// FetchQuote looks the pair up in the scan book, deriving the inverse
// orientation when only the flipped pair is listed.
func (p *Provider) FetchQuote(ctx context.Context, pair domain.Pair, venueName string) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := venue.Normalize(venueName)

	if entry, ok := scanBook[pairKey{pair.Base, pair.Quote}][id]; ok {
		return p.buildQuote(pair, id, decimal.RequireFromString(entry.bid),
			decimal.RequireFromString(entry.ask), decimal.RequireFromString(entry.volume))
	}

	// Inverse orientation: bid = 1/ask, ask = 1/bid.
	if entry, ok := scanBook[pairKey{pair.Quote, pair.Base}][id]; ok {
		one := decimal.NewFromInt(1)
		return p.buildQuote(pair, id,
			one.Div(decimal.RequireFromString(entry.ask)),
			one.Div(decimal.RequireFromString(entry.bid)),
			decimal.RequireFromString(entry.volume))
	}

	return nil, apperror.NotFound(apperror.CodePairNotQuoted,
		fmt.Sprintf("%s on %s", pair, venueName))
}

// ListPairs enumerates the venue book for triangular search.
func (p *Provider) ListPairs(ctx context.Context, venueName string) ([]domain.Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := venueBook[venue.Normalize(venueName)]
	pairs := make([]domain.Pair, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, domain.Pair{Base: e.base, Quote: e.quote})
	}
	return pairs, nil
}

// VenueBook returns the venue's full pair list with prices and fee rates.
func (p *Provider) VenueBook(venueName string) []BookPair {
	entries := venueBook[venue.Normalize(venueName)]
	out := make([]BookPair, 0, len(entries))
	for _, e := range entries {
		out = append(out, BookPair{
			Pair:    domain.Pair{Base: e.base, Quote: e.quote},
			Bid:     decimal.RequireFromString(e.bid),
			Ask:     decimal.RequireFromString(e.ask),
			FeeRate: decimal.RequireFromString(e.fee),
		})
	}
	return out
}

func (p *Provider) buildQuote(pair domain.Pair, id string, bid, ask, volume decimal.Decimal) (*domain.Quote, error) {
	name := id
	vt := domain.VenueCEX
	chain := ""
	if cfg, ok := p.venues.Lookup(id); ok {
		name = cfg.Name
		if cfg.Type == venue.TypeDEX {
			vt = domain.VenueDEX
			chain = "ethereum"
		}
	}
	return domain.NewQuote(name, vt, pair, bid, ask, volume, chain)
}
