// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"
	"sync"

	"github.com/fd1az/arb-finder/business/pricing/domain"
	"github.com/fd1az/arb-finder/internal/logger"
	"github.com/fd1az/arb-finder/internal/ratelimit"
)

// FetchOptions narrows which venues a fetch targets. An explicit venue list
// wins over the type filter; empty means every venue the source knows.
type FetchOptions struct {
	Venues    []string
	VenueType domain.VenueType
}

// PriceService fans a quote fetch out across venues and collects the results.
// Individual venue failures are logged and skipped; the scan degrades to
// whatever subset of quotes arrived.
type PriceService struct {
	source  Source
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

// NewPriceService creates a PriceService. limiter may be nil for sources
// with no request budget (e.g. the simulated book).
func NewPriceService(source Source, limiter *ratelimit.Limiter, log *logger.Logger) *PriceService {
	return &PriceService{
		source:  source,
		limiter: limiter,
		log:     log.With("component", "price_service"),
	}
}

// Source exposes the underlying source, for health checks.
func (s *PriceService) Source() Source {
	return s.source
}

// FetchAll fetches pair quotes from every selected venue concurrently.
// Results keep venue selection order. Returns ctx.Err() if cancelled;
// otherwise an error-free, possibly short, quote list.
func (s *PriceService) FetchAll(ctx context.Context, pair domain.Pair, opts FetchOptions) ([]*domain.Quote, error) {
	venues := opts.Venues
	if len(venues) == 0 {
		venues = s.source.Venues(opts.VenueType)
	}

	quotes := make([]*domain.Quote, len(venues))
	var wg sync.WaitGroup
	for i, v := range venues {
		wg.Add(1)
		go func(i int, v string) {
			defer wg.Done()

			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return
				}
			}

			q, err := s.source.FetchQuote(ctx, pair, v)
			if err != nil {
				s.log.Debug(ctx, "quote unavailable", "venue", v, "pair", pair.String(), "error", err)
				return
			}
			quotes[i] = q
		}(i, v)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := quotes[:0]
	for _, q := range quotes {
		if q != nil {
			out = append(out, q)
		}
	}
	s.log.Debug(ctx, "quotes fetched", "pair", pair.String(), "requested", len(venues), "received", len(out))
	return out, nil
}

// ListPairs enumerates the venue's tradable pairs when the source supports it.
func (s *PriceService) ListPairs(ctx context.Context, venue string) ([]domain.Pair, error) {
	if pl, ok := s.source.(PairLister); ok {
		return pl.ListPairs(ctx, venue)
	}
	return nil, nil
}
