package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pricing "github.com/fd1az/arb-finder/business/pricing/domain"
	scandomain "github.com/fd1az/arb-finder/business/scanner/domain"
)

const maxAlerts = 5

// ConnectionInfo holds one source's connection state.
type ConnectionInfo struct {
	Connected bool
	Latency   time.Duration
	LastSeen  time.Time
}

type alertEntry struct {
	at  time.Time
	opp *scandomain.Opportunity
}

// Model is the monitor dashboard.
type Model struct {
	pair          string
	alertNetPct   float64
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	quotes        []*pricing.Quote
	opportunities []*scandomain.Opportunity
	best          *scandomain.Opportunity
	alerts        []alertEntry
	connections   map[string]*ConnectionInfo
	errorMsg      string
	gasGwei       float64
	scanCount     uint64
	lastScan      time.Time
	paused        bool
	quitting      bool
	width         int
}

// New creates the dashboard model for one pair.
func New(pair string, alertNetPct float64) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorSecondary)

	return Model{
		pair:        pair,
		alertNetPct: alertNetPct,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		connections: make(map[string]*ConnectionInfo),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Clear):
			m.alerts = nil
			m.errorMsg = ""
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case TickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ScanResultMsg:
		// A pause freezes the dashboard; the scan loop keeps running.
		if msg.Result != nil && !m.paused {
			m.quotes = msg.Result.Quotes
			m.opportunities = msg.Result.Opportunities
			m.best = msg.Result.Best
			m.scanCount++
			m.lastScan = time.Now()
		}

	case AlertMsg:
		m.alerts = append(m.alerts, alertEntry{at: time.Now(), opp: msg.Opportunity})
		if len(m.alerts) > maxAlerts {
			m.alerts = m.alerts[len(m.alerts)-maxAlerts:]
		}

	case ConnectionStatusMsg:
		m.connections[msg.Name] = &ConnectionInfo{
			Connected: msg.Connected,
			Latency:   msg.Latency,
			LastSeen:  time.Now(),
		}

	case GasPriceMsg:
		m.gasGwei = msg.Gwei

	case ErrorMsg:
		m.errorMsg = msg.Error.Error()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" Arbitrage Monitor "))
	b.WriteString("  ")
	b.WriteString(HeaderStyle.Render(m.pair))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	b.WriteString(BoxStyle.Render(m.renderQuotes()))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(m.renderOpportunities()))
	b.WriteString("\n")

	if len(m.alerts) > 0 {
		b.WriteString(m.renderAlerts())
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString(NegativeValue.Render("error: " + m.errorMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.paused {
		parts = append(parts, WarningValue.Render("PAUSED"))
	} else {
		parts = append(parts, m.spinner.View()+StatusConnected.Render(" scanning"))
	}

	parts = append(parts, fmt.Sprintf("Scans: %d", m.scanCount))

	if m.gasGwei > 0 {
		parts = append(parts, fmt.Sprintf("Gas: %.1f gwei", m.gasGwei))
	}

	names := make([]string, 0, len(m.connections))
	for name := range m.connections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		info := m.connections[name]
		if info.Connected {
			parts = append(parts, StatusConnected.Render("● "+name))
		} else {
			parts = append(parts, StatusDisconnected.Render("○ "+name))
		}
	}

	if !m.lastScan.IsZero() {
		ago := time.Since(m.lastScan).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("updated %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

func (m Model) renderQuotes() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("PRICES"))
	b.WriteString("\n\n")

	if len(m.quotes) == 0 {
		b.WriteString(MutedValue.Render("Waiting for quotes..."))
		return b.String()
	}

	quotes := make([]*pricing.Quote, len(m.quotes))
	copy(quotes, m.quotes)
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Bid.GreaterThan(quotes[j].Bid)
	})

	b.WriteString(fmt.Sprintf("%-14s %12s %12s %9s\n", "Venue", "Bid", "Ask", "Spread"))
	b.WriteString(MutedValue.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")
	for _, q := range quotes {
		b.WriteString(fmt.Sprintf("%-14s $%11s $%11s %8.3f%%\n",
			q.Venue, q.Bid.StringFixed(2), q.Ask.StringFixed(2), q.SpreadPct))
	}

	return b.String()
}

func (m Model) renderOpportunities() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("OPPORTUNITIES"))
	b.WriteString("\n\n")

	if len(m.opportunities) == 0 {
		b.WriteString(MutedValue.Render("None this cycle (market is efficient)"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%-14s %-14s %10s %10s %-8s\n", "Buy On", "Sell On", "Gross", "Net", "Risk"))
	b.WriteString(MutedValue.Render(strings.Repeat("─", 60)))
	b.WriteString("\n")

	shown := m.opportunities
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, opp := range shown {
		net := fmt.Sprintf("%+9.4f%%", opp.NetSpreadPct)
		if opp.NetSpreadPct > 0 {
			net = PositiveValue.Render(net)
		} else {
			net = NegativeValue.Render(net)
		}
		b.WriteString(fmt.Sprintf("%-14s %-14s %+9.4f%% %s %-8s\n",
			opp.BuyVenue, opp.SellVenue, opp.GrossSpreadPct, net, opp.Risk))
	}

	if m.best != nil && m.best.NetSpreadPct >= m.alertNetPct {
		b.WriteString("\n")
		b.WriteString(PositiveValue.Render(fmt.Sprintf(
			"Best: buy %s / sell %s at %+.4f%% net",
			m.best.BuyVenue, m.best.SellVenue, m.best.NetSpreadPct)))
	}

	return b.String()
}

func (m Model) renderAlerts() string {
	var b strings.Builder
	b.WriteString(AlertStyle.Render("ALERTS"))
	b.WriteString("\n")
	for i := len(m.alerts) - 1; i >= 0; i-- {
		a := m.alerts[i]
		b.WriteString(fmt.Sprintf("  %s  %s: buy %s, sell %s, net %+.4f%%\n",
			a.at.Format("15:04:05"), a.opp.Pair,
			a.opp.BuyVenue, a.opp.SellVenue, a.opp.NetSpreadPct))
	}
	return b.String()
}

// Program holds the running Bubble Tea program so scan loops can Send into it.
var Program *tea.Program

// Run starts the dashboard and blocks until it exits.
func Run(m Model) error {
	Program = tea.NewProgram(m, tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send delivers a message to the running dashboard, if any.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
