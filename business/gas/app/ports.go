// Package app defines the gas context's ports.
package app

import (
	"context"

	"github.com/fd1az/arb-finder/business/gas/domain"
)

// Oracle supplies the current gas price. Implementations: a static oracle
// fed from configuration and a live one backed by an Ethereum node.
type Oracle interface {
	GasPrice(ctx context.Context) (*domain.GasPrice, error)
	Close() error
}
