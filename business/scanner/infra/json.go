package infra

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	profitdomain "github.com/fd1az/arb-finder/business/profit/domain"
	scandomain "github.com/fd1az/arb-finder/business/scanner/domain"
	tridomain "github.com/fd1az/arb-finder/business/triangular/domain"
)

// JSONReporter renders scan output as machine-readable JSON.
type JSONReporter struct {
	out io.Writer
}

// NewJSONReporter creates a reporter. A nil writer means stdout.
func NewJSONReporter(out io.Writer) *JSONReporter {
	if out == nil {
		out = os.Stdout
	}
	return &JSONReporter{out: out}
}

type quoteDTO struct {
	Venue     string  `json:"venue"`
	VenueType string  `json:"venue_type"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	SpreadPct float64 `json:"spread_pct"`
	Volume24h float64 `json:"volume_24h"`
}

type opportunityDTO struct {
	Type            string   `json:"type"`
	Pair            string   `json:"pair"`
	BuyVenue        string   `json:"buy_venue"`
	SellVenue       string   `json:"sell_venue"`
	BuyPrice        float64  `json:"buy_price"`
	SellPrice       float64  `json:"sell_price"`
	GrossSpreadPct  float64  `json:"gross_spread_pct"`
	NetSpreadPct    float64  `json:"net_spread_pct"`
	BuyFeePct       float64  `json:"buy_fee_pct"`
	SellFeePct      float64  `json:"sell_fee_pct"`
	EstimatedGasUSD float64  `json:"estimated_gas_usd"`
	Risk            string   `json:"risk"`
	IsProfitable    bool     `json:"is_profitable"`
	Notes           []string `json:"notes,omitempty"`
}

type scanResultDTO struct {
	Pair               string           `json:"pair"`
	Timestamp          string           `json:"timestamp"`
	QuotesCount        int              `json:"quotes_count"`
	OpportunitiesCount int              `json:"opportunities_count"`
	Quotes             []quoteDTO       `json:"quotes"`
	Opportunities      []opportunityDTO `json:"opportunities"`
	BestOpportunity    *opportunityDTO  `json:"best_opportunity,omitempty"`
}

type pathDTO struct {
	Tokens         []string `json:"tokens"`
	Venue          string   `json:"exchange"`
	GrossProfitPct float64  `json:"gross_profit_pct"`
	TotalFeesPct   float64  `json:"total_fees_pct"`
	NetProfitPct   float64  `json:"net_profit_pct"`
	IsProfitable   bool     `json:"is_profitable"`
	Steps          []string `json:"steps"`
}

type triangularDTO struct {
	Timestamp  string    `json:"timestamp"`
	PathsCount int       `json:"paths_count"`
	Paths      []pathDTO `json:"paths"`
}

type breakdownDTO struct {
	Pair               string        `json:"pair"`
	BuyVenue           string        `json:"buy_venue"`
	SellVenue          string        `json:"sell_venue"`
	TradeAmount        float64       `json:"trade_amount"`
	BuyPrice           float64       `json:"buy_price"`
	SellPrice          float64       `json:"sell_price"`
	GrossProfit        float64       `json:"gross_profit"`
	GrossProfitPct     float64       `json:"gross_profit_pct"`
	Costs              breakdownCost `json:"costs"`
	NetProfit          float64       `json:"net_profit"`
	NetProfitPct       float64       `json:"net_profit_pct"`
	BreakevenSpreadPct float64       `json:"breakeven_spread_pct"`
	IsProfitable       bool          `json:"is_profitable"`
}

type breakdownCost struct {
	BuyFee        float64 `json:"buy_fee"`
	SellFee       float64 `json:"sell_fee"`
	WithdrawalFee float64 `json:"withdrawal_fee"`
	GasCost       float64 `json:"gas_cost"`
	SlippageCost  float64 `json:"slippage_cost"`
	Total         float64 `json:"total"`
}

func f(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toOpportunityDTO(opp *scandomain.Opportunity) *opportunityDTO {
	return &opportunityDTO{
		Type:            string(opp.Type),
		Pair:            opp.Pair.String(),
		BuyVenue:        opp.BuyVenue,
		SellVenue:       opp.SellVenue,
		BuyPrice:        f(opp.BuyPrice),
		SellPrice:       f(opp.SellPrice),
		GrossSpreadPct:  opp.GrossSpreadPct,
		NetSpreadPct:    opp.NetSpreadPct,
		BuyFeePct:       opp.BuyFeePct,
		SellFeePct:      opp.SellFeePct,
		EstimatedGasUSD: opp.EstimatedGasUSD,
		Risk:            string(opp.Risk),
		IsProfitable:    opp.IsProfitable(),
		Notes:           opp.Notes,
	}
}

func toQuoteDTO(q *pricing.Quote) quoteDTO {
	return quoteDTO{
		Venue:     q.Venue,
		VenueType: string(q.VenueType),
		Bid:       f(q.Bid),
		Ask:       f(q.Ask),
		SpreadPct: q.SpreadPct,
		Volume24h: f(q.Volume24h),
	}
}

func (r *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintScanResult writes the scan result as an indented JSON document.
func (r *JSONReporter) PrintScanResult(result *scandomain.ScanResult) error {
	dto := scanResultDTO{
		Pair:               result.Pair.String(),
		Timestamp:          result.Timestamp.UTC().Format(time.RFC3339),
		QuotesCount:        len(result.Quotes),
		OpportunitiesCount: len(result.Opportunities),
		Quotes:             make([]quoteDTO, 0, len(result.Quotes)),
		Opportunities:      make([]opportunityDTO, 0, len(result.Opportunities)),
	}
	for _, q := range result.Quotes {
		dto.Quotes = append(dto.Quotes, toQuoteDTO(q))
	}
	for _, opp := range result.Opportunities {
		dto.Opportunities = append(dto.Opportunities, *toOpportunityDTO(opp))
	}
	if result.Best != nil {
		dto.BestOpportunity = toOpportunityDTO(result.Best)
	}
	return r.encode(dto)
}

// PrintTriangularPaths writes evaluated paths as an indented JSON document.
func (r *JSONReporter) PrintTriangularPaths(paths []*tridomain.Path) error {
	dto := triangularDTO{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		PathsCount: len(paths),
		Paths:      make([]pathDTO, 0, len(paths)),
	}
	for _, p := range paths {
		dto.Paths = append(dto.Paths, pathDTO{
			Tokens:         p.Tokens,
			Venue:          p.Venue,
			GrossProfitPct: p.GrossProfitPct,
			TotalFeesPct:   p.TotalFeesPct,
			NetProfitPct:   p.NetProfitPct,
			IsProfitable:   p.IsProfitable(),
			Steps:          p.ExecutionSteps,
		})
	}
	return r.encode(dto)
}

// PrintBreakdown writes the cost breakdown as an indented JSON document.
func (r *JSONReporter) PrintBreakdown(b *profitdomain.Breakdown) error {
	dto := breakdownDTO{
		Pair:           b.Pair.String(),
		BuyVenue:       b.BuyVenue,
		SellVenue:      b.SellVenue,
		TradeAmount:    f(b.TradeAmount),
		BuyPrice:       f(b.BuyPrice),
		SellPrice:      f(b.SellPrice),
		GrossProfit:    f(b.GrossProfit),
		GrossProfitPct: b.GrossProfitPct,
		Costs: breakdownCost{
			BuyFee:        f(b.BuyFee),
			SellFee:       f(b.SellFee),
			WithdrawalFee: f(b.WithdrawalFee),
			GasCost:       f(b.GasCost),
			SlippageCost:  f(b.SlippageCost),
			Total:         f(b.TotalCosts),
		},
		NetProfit:          f(b.NetProfit),
		NetProfitPct:       b.NetProfitPct,
		BreakevenSpreadPct: b.BreakevenSpreadPct,
		IsProfitable:       b.IsProfitable,
	}
	return r.encode(dto)
}
