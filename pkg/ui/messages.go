package ui

import (
	"time"

	scandomain "github.com/fd1az/arb-finder/business/scanner/domain"
)

// ScanResultMsg carries one completed scan cycle into the dashboard.
type ScanResultMsg struct {
	Result *scandomain.ScanResult
}

// AlertMsg flags an opportunity that crossed the alert threshold.
type AlertMsg struct {
	Opportunity *scandomain.Opportunity
}

// ConnectionStatusMsg reports a price source's connection state.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// GasPriceMsg carries a gas price update.
type GasPriceMsg struct {
	Gwei float64
}

// ErrorMsg surfaces a scan error in the dashboard.
type ErrorMsg struct {
	Error error
}

// TickMsg drives periodic redraws.
type TickMsg struct{}
