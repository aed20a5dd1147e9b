// Package infra contains output adapters for scan results.
package infra

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	profitdomain "github.com/fd1az/arb-finder/business/profit/domain"
	scandomain "github.com/fd1az/arb-finder/business/scanner/domain"
	tridomain "github.com/fd1az/arb-finder/business/triangular/domain"
)

const lineWidth = 70

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	riskStyles = map[scandomain.RiskLevel]lipgloss.Style{
		scandomain.RiskLow:     profitStyle,
		scandomain.RiskMedium:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		scandomain.RiskHigh:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316")),
		scandomain.RiskExtreme: lossStyle,
	}
)

// ConsoleReporter renders scan output for terminals.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter. A nil writer means stdout.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) header(title string) string {
	pad := (lineWidth - len(title) - 2) / 2
	rule := strings.Repeat("=", pad)
	return "\n" + headerStyle.Render(fmt.Sprintf("%s %s %s", rule, title, rule)) + "\n"
}

func (r *ConsoleReporter) subheader(title string) string {
	rule := strings.Repeat("-", lineWidth)
	return fmt.Sprintf("\n%s\n%s\n%s", rule, headerStyle.Render(title), rule)
}

func signed(pct float64) string {
	s := fmt.Sprintf("%+.4f%%", pct)
	if pct > 0 {
		return profitStyle.Render(s)
	}
	return lossStyle.Render(s)
}

func riskLabel(level scandomain.RiskLevel) string {
	if style, ok := riskStyles[level]; ok {
		return style.Render(string(level))
	}
	return string(level)
}

// PrintScanResult renders a full scan: price table, ranked opportunities,
// and the best one in detail.
func (r *ConsoleReporter) PrintScanResult(result *scandomain.ScanResult) {
	fmt.Fprintln(r.out, r.header("ARBITRAGE SCAN RESULTS"))
	fmt.Fprintf(r.out, "Pair: %s\n", result.Pair)
	fmt.Fprintf(r.out, "Venues scanned: %d\n", len(result.Quotes))
	fmt.Fprintf(r.out, "Opportunities found: %d\n", len(result.Opportunities))

	if len(result.Opportunities) == 0 {
		fmt.Fprintln(r.out, mutedStyle.Render("\nNo profitable opportunities found (market is efficient)"))
		return
	}

	fmt.Fprintln(r.out, r.subheader("CURRENT PRICES"))
	fmt.Fprintf(r.out, "%-15s %12s %12s %8s\n", "Venue", "Bid", "Ask", "Spread")
	fmt.Fprintln(r.out, strings.Repeat("-", 50))

	quotes := make([]*pricing.Quote, len(result.Quotes))
	copy(quotes, result.Quotes)
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Bid.GreaterThan(quotes[j].Bid)
	})
	for _, q := range quotes {
		fmt.Fprintf(r.out, "%-15s $%11s $%11s %7.3f%%\n",
			q.Venue, q.Bid.StringFixed(2), q.Ask.StringFixed(2), q.SpreadPct)
	}

	fmt.Fprintln(r.out, r.subheader("OPPORTUNITIES"))
	fmt.Fprintf(r.out, "%-15s %-15s %9s %9s %s\n", "Buy On", "Sell On", "Gross", "Net", "Risk")
	fmt.Fprintln(r.out, strings.Repeat("-", 60))

	shown := result.Opportunities
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, opp := range shown {
		fmt.Fprintf(r.out, "%-15s %-15s %s %s %s\n",
			opp.BuyVenue, opp.SellVenue,
			signed(opp.GrossSpreadPct), signed(opp.NetSpreadPct),
			riskLabel(opp.Risk))
	}

	if result.Best != nil {
		fmt.Fprintln(r.out, r.subheader("BEST OPPORTUNITY"))
		r.PrintOpportunity(result.Best)
	}
}

// PrintOpportunity renders the detailed view of one opportunity.
func (r *ConsoleReporter) PrintOpportunity(opp *scandomain.Opportunity) {
	fmt.Fprintf(r.out, "Buy on %s at $%s\n", opp.BuyVenue, opp.BuyPrice.StringFixed(2))
	fmt.Fprintf(r.out, "Sell on %s at $%s\n\n", opp.SellVenue, opp.SellPrice.StringFixed(2))
	fmt.Fprintf(r.out, "Gross spread: %s\n", signed(opp.GrossSpreadPct))
	fmt.Fprintf(r.out, "Buy fee: -%.2f%%\n", opp.BuyFeePct)
	fmt.Fprintf(r.out, "Sell fee: -%.2f%%\n", opp.SellFeePct)
	if opp.EstimatedGasUSD > 0 {
		fmt.Fprintf(r.out, "Gas cost: ~$%.2f\n", opp.EstimatedGasUSD)
	}
	fmt.Fprintln(r.out, strings.Repeat("-", 40))
	fmt.Fprintf(r.out, "Net spread: %s\n", signed(opp.NetSpreadPct))
	fmt.Fprintf(r.out, "Risk: %s\n", riskLabel(opp.Risk))

	if len(opp.Notes) > 0 {
		fmt.Fprintln(r.out, "\nNotes:")
		for _, note := range opp.Notes {
			fmt.Fprintf(r.out, "  - %s\n", note)
		}
	}

	if opp.IsProfitable() {
		fmt.Fprintln(r.out, profitStyle.Render("\nPROFITABLE - consider execution"))
	} else {
		fmt.Fprintln(r.out, lossStyle.Render("\nNOT PROFITABLE after fees"))
	}
}

// PrintTriangularPaths renders ranked triangular cycles with the best path's
// execution steps.
func (r *ConsoleReporter) PrintTriangularPaths(paths []*tridomain.Path) {
	fmt.Fprintln(r.out, r.header("TRIANGULAR ARBITRAGE"))

	if len(paths) == 0 {
		fmt.Fprintln(r.out, mutedStyle.Render("No profitable triangular paths found"))
		return
	}

	fmt.Fprintf(r.out, "Found %d paths\n\n", len(paths))
	fmt.Fprintf(r.out, "%-30s %10s %10s %10s\n", "Path", "Gross", "Fees", "Net")
	fmt.Fprintln(r.out, strings.Repeat("-", 65))

	shown := paths
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, path := range shown {
		fmt.Fprintf(r.out, "%-30s %s -%.4f%% %s\n",
			strings.Join(path.Tokens, " > "),
			signed(path.GrossProfitPct), path.TotalFeesPct, signed(path.NetProfitPct))
	}

	best := paths[0]
	fmt.Fprintln(r.out, r.subheader("BEST PATH"))
	fmt.Fprintf(r.out, "Path: %s\n", strings.Join(best.Tokens, " > "))
	fmt.Fprintf(r.out, "Venue: %s\n\n", best.Venue)
	fmt.Fprintln(r.out, "Execution Steps:")
	for i, step := range best.ExecutionSteps {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, step)
	}
	fmt.Fprintf(r.out, "\nGross Profit: %s\n", signed(best.GrossProfitPct))
	fmt.Fprintf(r.out, "Total Fees: -%.4f%%\n", best.TotalFeesPct)
	fmt.Fprintf(r.out, "Net Profit: %s\n", signed(best.NetProfitPct))
}

// PrintBreakdown renders the itemized cost model for one sized trade.
func (r *ConsoleReporter) PrintBreakdown(b *profitdomain.Breakdown) {
	fmt.Fprintln(r.out, r.header("PROFIT BREAKDOWN"))
	fmt.Fprintf(r.out, "Trade: %s %s\n", b.TradeAmount, b.Pair.Base)
	fmt.Fprintf(r.out, "Buy on %s at $%s\n", b.BuyVenue, b.BuyPrice.StringFixed(2))
	fmt.Fprintf(r.out, "Sell on %s at $%s\n\n", b.SellVenue, b.SellPrice.StringFixed(2))

	fmt.Fprintf(r.out, "Gross Profit: $%s (%s)\n\n", b.GrossProfit.StringFixed(2), signed(b.GrossProfitPct))

	fmt.Fprintln(r.out, "Costs:")
	fmt.Fprintf(r.out, "  Buy fee:        -$%s\n", b.BuyFee.StringFixed(2))
	fmt.Fprintf(r.out, "  Sell fee:       -$%s\n", b.SellFee.StringFixed(2))
	fmt.Fprintf(r.out, "  Withdrawal:     -$%s\n", b.WithdrawalFee.StringFixed(2))
	fmt.Fprintf(r.out, "  Gas:            -$%s\n", b.GasCost.StringFixed(2))
	fmt.Fprintf(r.out, "  Slippage:       -$%s\n", b.SlippageCost.StringFixed(2))
	fmt.Fprintf(r.out, "  %s\n", strings.Repeat("-", 30))
	fmt.Fprintf(r.out, "  Total:          -$%s\n\n", b.TotalCosts.StringFixed(2))

	fmt.Fprintf(r.out, "Net Profit: $%s (%s)\n", b.NetProfit.StringFixed(2), signed(b.NetProfitPct))
	fmt.Fprintf(r.out, "Breakeven spread: %.3f%%\n", b.BreakevenSpreadPct)

	if b.IsProfitable {
		fmt.Fprintln(r.out, profitStyle.Render("\nPROFITABLE"))
	} else {
		fmt.Fprintln(r.out, lossStyle.Render("\nNOT PROFITABLE"))
	}
}

// PrintAlert renders the monitor's alert block for one opportunity.
func (r *ConsoleReporter) PrintAlert(opp *scandomain.Opportunity, tradeAmount decimal.Decimal) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(r.out, headerStyle.Render(rule))
	fmt.Fprintln(r.out, headerStyle.Render("ARBITRAGE ALERT"))
	fmt.Fprintln(r.out, headerStyle.Render(rule))
	fmt.Fprintf(r.out, "\n%s spread %s\n", opp.Pair, signed(opp.NetSpreadPct))
	fmt.Fprintf(r.out, "Buy on %s at $%s\n", opp.BuyVenue, opp.BuyPrice.StringFixed(2))
	fmt.Fprintf(r.out, "Sell on %s at $%s\n", opp.SellVenue, opp.SellPrice.StringFixed(2))

	if tradeAmount.IsPositive() {
		profit := opp.ProfitForAmount(tradeAmount)
		fmt.Fprintf(r.out, "\nFor %s units:\n", tradeAmount)
		fmt.Fprintf(r.out, "Estimated profit: $%s\n", profit.Mul(opp.BuyPrice).StringFixed(2))
	}

	fmt.Fprintf(r.out, "\nRisk: %s\n", riskLabel(opp.Risk))
}
