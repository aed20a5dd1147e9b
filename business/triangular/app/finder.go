// Package app implements triangular arbitrage search over a venue's pair book.
package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-finder/business/triangular/domain"
)

var one = decimal.NewFromInt(1)

// permutations of three indices; direction decides bid vs ask per hop, so
// every ordering of a triangle is a distinct candidate cycle.
var triPerms = [6][3]int{
	{0, 1, 2}, {0, 2, 1},
	{1, 0, 2}, {1, 2, 0},
	{2, 0, 1}, {2, 1, 0},
}

// Finder enumerates triangles in a venue's token graph and prices every
// ordering of each. Pure computation; safe for concurrent use.
type Finder struct {
	minProfitPct float64
}

// NewFinder creates a Finder reporting cycles with net profit >= minProfitPct.
func NewFinder(minProfitPct float64) *Finder {
	return &Finder{minProfitPct: minProfitPct}
}

// FindOpportunities returns profitable cycles on the venue, sorted descending
// by net profit.
func (f *Finder) FindOpportunities(venue string, pairs []domain.TradingPair) []*domain.Path {
	if len(pairs) == 0 {
		return nil
	}

	graph := buildGraph(pairs)
	triangles := findTriangles(graph)

	var out []*domain.Path
	for _, tri := range triangles {
		path := evaluateTriangle(tri, pairs, venue)
		if path != nil && path.NetProfitPct >= f.minProfitPct {
			out = append(out, path)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetProfitPct > out[j].NetProfitPct
	})
	return out
}

// AnalyzeTriangle prices one specific token triple, regardless of the profit
// filter. Returns nil when no ordering of the triangle is tradable.
func (f *Finder) AnalyzeTriangle(a, b, c, venue string, pairs []domain.TradingPair) *domain.Path {
	tri := [3]string{strings.ToUpper(a), strings.ToUpper(b), strings.ToUpper(c)}
	return evaluateTriangle(tri, pairs, venue)
}

// buildGraph produces an undirected adjacency list; every pair is tradable in
// both directions.
func buildGraph(pairs []domain.TradingPair) map[string][]string {
	graph := make(map[string][]string)
	add := func(from, to string) {
		for _, n := range graph[from] {
			if n == to {
				return
			}
		}
		graph[from] = append(graph[from], to)
	}
	for _, p := range pairs {
		if _, ok := graph[p.Base]; !ok {
			graph[p.Base] = nil
		}
		if _, ok := graph[p.Quote]; !ok {
			graph[p.Quote] = nil
		}
		add(p.Base, p.Quote)
		add(p.Quote, p.Base)
	}
	return graph
}

// findTriangles brute-forces 3-cycles, deduplicating via sorted triples.
// Token graphs per venue are small, so the cubic walk is fine.
func findTriangles(graph map[string][]string) [][3]string {
	seen := make(map[[3]string]bool)
	var out [][3]string

	tokens := make([]string, 0, len(graph))
	for t := range graph {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)

	neighbors := func(t string) map[string]bool {
		m := make(map[string]bool, len(graph[t]))
		for _, n := range graph[t] {
			m[n] = true
		}
		return m
	}
	adj := make(map[string]map[string]bool, len(graph))
	for _, t := range tokens {
		adj[t] = neighbors(t)
	}

	for _, a := range tokens {
		for _, b := range graph[a] {
			for _, c := range graph[b] {
				if c != a && adj[c][a] {
					key := [3]string{a, b, c}
					sort.Strings(key[:])
					if !seen[key] {
						seen[key] = true
						out = append(out, key)
					}
				}
			}
		}
	}
	return out
}

// evaluateTriangle tries all 6 orderings of the triangle and keeps the one
// with the highest gross profit. Unreachable orderings (missing pair for a
// hop) are skipped; nil when none is tradable.
func evaluateTriangle(tri [3]string, pairs []domain.TradingPair, venue string) *domain.Path {
	var best *domain.Path
	bestGross := 0.0

	for _, perm := range triPerms {
		cycle := []string{tri[perm[0]], tri[perm[1]], tri[perm[2]], tri[perm[0]]}
		gross, fees, steps, used, ok := walkCycle(cycle, pairs)
		if !ok {
			continue
		}
		if best == nil || gross > bestGross {
			bestGross = gross
			best = &domain.Path{
				Tokens:         cycle,
				Pairs:          used,
				GrossProfitPct: gross,
				NetProfitPct:   gross - fees,
				TotalFeesPct:   fees,
				Venue:          venue,
				ExecutionSteps: steps,
			}
		}
	}
	return best
}

// walkCycle prices a concrete cycle starting from a notional 1 unit of the
// first token. Each hop applies (1 - fee) to the running amount; the fee
// percentages are additionally summed for the reported total.
func walkCycle(cycle []string, pairs []domain.TradingPair) (gross, fees float64, steps []string, used []domain.TradingPair, ok bool) {
	type edge struct{ from, to string }
	pairMap := make(map[edge]domain.TradingPair, len(pairs)*2)
	for _, p := range pairs {
		pairMap[edge{p.Base, p.Quote}] = p
		pairMap[edge{p.Quote, p.Base}] = p
	}

	amount := one
	for i := 0; i < len(cycle)-1; i++ {
		from, to := cycle[i], cycle[i+1]

		pair, found := pairMap[edge{from, to}]
		if !found {
			return 0, 0, nil, nil, false
		}
		used = append(used, pair)

		var step string
		if pair.Base == from {
			// Selling base for quote at bid.
			amount = amount.Mul(pair.Bid)
			step = fmt.Sprintf("Sell %s for %s at %s", from, to, pair.Bid)
		} else {
			// Buying base with quote at ask.
			amount = amount.Div(pair.Ask)
			step = fmt.Sprintf("Buy %s with %s at %s", to, from, pair.Ask)
		}

		feePct, _ := pair.FeeRate.Mul(decimal.NewFromInt(100)).Float64()
		fees += feePct
		amount = amount.Mul(one.Sub(pair.FeeRate))

		steps = append(steps, step)
	}

	grossDec, _ := amount.Sub(one).Float64()
	return grossDec * 100, fees, steps, used, true
}
