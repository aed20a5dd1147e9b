// Package domain contains the core domain types for the gas context.
package domain

import (
	"math/big"
	"time"
)

// GasPrice is a point-in-time gas price observation.
type GasPrice struct {
	Wei       *big.Int
	Gwei      float64
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	gwei := new(big.Float).SetInt(wei)
	gwei.Quo(gwei, big.NewFloat(1e9))
	gweiFloat, _ := gwei.Float64()

	return &GasPrice{
		Wei:       wei,
		Gwei:      gweiFloat,
		Timestamp: time.Now(),
	}
}

// NewGasPriceFromGwei creates a GasPrice from a gwei figure, as configured
// statically.
func NewGasPriceFromGwei(gwei float64) *GasPrice {
	wei, _ := new(big.Float).Mul(big.NewFloat(gwei), big.NewFloat(1e9)).Int(nil)
	return &GasPrice{
		Wei:       wei,
		Gwei:      gwei,
		Timestamp: time.Now(),
	}
}

// CostUSD prices a transaction of gasUnits at this gas price against a
// reference ETH/USD rate.
func (p *GasPrice) CostUSD(gasUnits uint64, ethPriceUSD float64) float64 {
	return float64(gasUnits) * p.Gwei * 1e-9 * ethPriceUSD
}
