// Package static provides a configuration-backed gas oracle.
package static

import (
	"context"

	"github.com/fd1az/arb-finder/business/gas/domain"
)

// Oracle returns a fixed gas price, the default when no RPC endpoint is
// configured or the caller pinned the price on the command line.
type Oracle struct {
	gwei float64
}

// NewOracle creates an Oracle pinned at gwei.
func NewOracle(gwei float64) *Oracle {
	return &Oracle{gwei: gwei}
}

func (o *Oracle) GasPrice(_ context.Context) (*domain.GasPrice, error) {
	return domain.NewGasPriceFromGwei(o.gwei), nil
}

func (o *Oracle) Close() error { return nil }
